package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastTTL is how long a status message stays on screen.
const toastTTL = 5 * time.Second

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type toast struct {
	text string
	kind toastKind
	seq  int
}

// clearToastMsg expires the toast with the matching seq. A newer toast has a
// higher seq and survives.
type clearToastMsg struct{ seq int }

// show replaces the current toast and schedules its expiry.
func (t toast) show(text string, kind toastKind) (toast, tea.Cmd) {
	next := toast{text: text, kind: kind, seq: t.seq + 1}
	seq := next.seq
	return next, tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (t toast) clear(msg clearToastMsg) toast {
	if msg.seq == t.seq {
		t.text = ""
	}
	return t
}

func (t toast) View() string {
	if t.text == "" {
		return ""
	}
	return toastStyle(t.kind).Render(t.text)
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/docduty/internal/state"
	"github.com/naveenspark/docduty/pkg/domain"
)

type scheduleModel struct {
	mgr       *state.Manager
	deviceID  string
	now       func() time.Time
	filter    domain.QuickFilter
	date      string // custom dd/mm/yyyy date, overrides filter
	editing   bool   // typing a custom date
	dateInput string
	snap      snapshot
	cursor    int
	statusMsg string
	width     int
	height    int
}

type toggleResultMsg struct {
	name       string
	subscribed bool
	err        error
}

type copyResultMsg struct{ err error }

func newScheduleModel(mgr *state.Manager, deviceID string, now func() time.Time) scheduleModel {
	if now == nil {
		now = time.Now
	}
	return scheduleModel{
		mgr:      mgr,
		deviceID: deviceID,
		now:      now,
		filter:   domain.FilterAll,
		snap:     takeSnapshot(mgr),
	}
}

// queryDate is the date parameter for the active filter.
func (m scheduleModel) queryDate() string {
	if m.date != "" {
		return m.date
	}
	return m.filter.Date(m.now())
}

func (m scheduleModel) load() tea.Cmd {
	mgr, date := m.mgr, m.queryDate()
	return func() tea.Msg {
		mgr.LoadSchedules(context.Background(), date)
		return stateChangedMsg{snap: takeSnapshot(mgr)}
	}
}

func (m scheduleModel) loadSubscriptions() tea.Cmd {
	mgr, deviceID := m.mgr, m.deviceID
	return func() tea.Msg {
		mgr.LoadSubscriptions(context.Background(), deviceID)
		return stateChangedMsg{snap: takeSnapshot(mgr)}
	}
}

func (m scheduleModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.loadSubscriptions())
}

// rows is the schedule list in display order (grouped by date).
func (m scheduleModel) rows() []domain.DoctorSchedule {
	var out []domain.DoctorSchedule
	for _, g := range domain.GroupByDate(m.snap.schedules) {
		out = append(out, g.Schedules...)
	}
	return out
}

func (m scheduleModel) Update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.snap = msg.snap
		if n := len(m.snap.schedules); m.cursor >= n {
			m.cursor = 0
		}
		return m, nil

	case toggleResultMsg:
		if msg.err != nil {
			m.statusMsg = ""
			return m, nil
		}
		if msg.subscribed {
			m.statusMsg = "Subscribed to " + msg.name
		} else {
			m.statusMsg = "Unsubscribed from " + msg.name
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.editing {
			return m.updateDateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m scheduleModel) updateDateInput(msg tea.KeyMsg) (scheduleModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		in := strings.TrimSpace(m.dateInput)
		if in == "" {
			m.editing = false
			return m, nil
		}
		if _, err := time.Parse(domain.DateLayout, in); err != nil {
			m.statusMsg = "date must be dd/mm/yyyy"
			return m, nil
		}
		m.editing = false
		m.date = in
		m.cursor = 0
		return m, m.load()
	case "esc":
		m.editing = false
		m.dateInput = ""
	default:
		m.dateInput = editRune(m.dateInput, msg.String())
	}
	return m, nil
}

func (m scheduleModel) updateList(msg tea.KeyMsg) (scheduleModel, tea.Cmd) {
	rows := m.rows()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "t":
		return m.setFilter(domain.FilterToday)
	case "m":
		return m.setFilter(domain.FilterTomorrow)
	case "a":
		return m.setFilter(domain.FilterAll)
	case "d":
		m.editing = true
		m.dateInput = m.date
	case "r":
		return m, tea.Batch(m.load(), m.loadSubscriptions())
	case "enter", "s":
		if m.cursor < len(rows) {
			return m, m.toggle(rows[m.cursor].Name)
		}
	case "c":
		if m.cursor < len(rows) {
			text := scheduleLine(rows[m.cursor])
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(text)}
			}
		}
	}
	return m, nil
}

func (m scheduleModel) setFilter(f domain.QuickFilter) (scheduleModel, tea.Cmd) {
	m.filter = f
	m.date = ""
	m.cursor = 0
	return m, m.load()
}

func (m scheduleModel) toggle(name string) tea.Cmd {
	mgr, deviceID := m.mgr, m.deviceID
	return func() tea.Msg {
		on, err := mgr.ToggleDoctor(context.Background(), deviceID, name)
		return toggleResultMsg{name: name, subscribed: on, err: err}
	}
}

func (m scheduleModel) helpKeys() string {
	if m.editing {
		return helpEntry("enter", "apply") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("t/m/a", "filter") + "  " + helpEntry("d", "date") + "  " +
		helpEntry("j/k", "nav") + "  " + helpEntry("s", "subscribe") + "  " +
		helpEntry("c", "copy") + "  " + helpEntry("r", "refresh")
}

func (m scheduleModel) View() string {
	var b strings.Builder

	// Filter bar
	b.WriteString(" ")
	active := m.filter
	for i, f := range domain.QuickFilters {
		if i > 0 {
			b.WriteString("  ")
		}
		if m.date == "" && f == active {
			b.WriteString(accentStyle.Bold(true).Render("[" + f.String() + "]"))
		} else {
			b.WriteString(dimStyle.Render(f.String()))
		}
	}
	b.WriteString("   ")
	switch {
	case m.editing:
		b.WriteString(renderInput("date", m.dateInput, "dd/mm/yyyy", true))
	case m.date != "":
		b.WriteString(accentStyle.Bold(true).Render("[" + m.date + "]"))
	default:
		b.WriteString(metaStyle.Render("d date"))
	}
	b.WriteString("\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + successStyle.Render(m.statusMsg) + "\n")
	}

	if m.snap.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}

	if m.snap.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.snap.err) + "\n")
		b.WriteString(" " + dimStyle.Render("press r to retry") + "\n")
	}

	if len(m.snap.schedules) == 0 {
		if m.snap.err == "" {
			b.WriteString(" " + dimStyle.Render("No schedules found"))
		}
		return b.String()
	}

	head := b.String()
	avail := 0
	if m.height > 0 {
		avail = m.height - strings.Count(head, "\n")
	}
	return head + m.viewList(avail)
}

// listLine is one rendered line of the schedule list. row is the schedule
// index it belongs to, or -1 for section headers.
type listLine struct {
	text string
	row  int
}

// viewList renders the grouped list, scrolled so the cursor row fits in
// maxLines. A non-positive maxLines renders everything.
func (m scheduleModel) viewList(maxLines int) string {
	var lines []listLine
	idx := 0
	nameW := m.width / 2
	if nameW < 16 {
		nameW = 16
	}
	for _, g := range domain.GroupByDate(m.snap.schedules) {
		lines = append(lines,
			listLine{"", -1},
			listLine{" " + sectionHeaderStyle.Render(groupTitle(g.Date)) + "  " + metaStyle.Render(doctorCount(len(g.Schedules))), -1},
		)
		for _, s := range g.Schedules {
			selected := idx == m.cursor
			prefix := "   "
			name := normalStyle.Render(truncStr(s.Name, nameW))
			if selected {
				prefix = " " + accentStyle.Render(">") + " "
				name = selectedStyle.Render(truncStr(s.Name, nameW))
			}
			line := prefix + name + "  " + CategoryBadge(s.Category, s.IsRegular())
			if m.snap.subscribed.Contains(s.Name) {
				line += "  " + subscribedStyle.Render("✓ subscribed")
			}
			if selected {
				line = selectedRowBg.Render(line)
			}

			detail := "     " + dimStyle.Render("🕒 "+s.Timing)
			if room := s.RoomName(); room != "" {
				detail += "   " + metaStyle.Render("📍 "+room)
			}
			lines = append(lines, listLine{line, idx}, listLine{detail, idx})
			idx++
		}
	}

	start, end := 0, len(lines)
	if maxLines > 0 && len(lines) > maxLines {
		if maxLines < 4 {
			maxLines = 4
		}
		last := 0
		for i, l := range lines {
			if l.row == m.cursor {
				last = i
			}
		}
		if last >= maxLines {
			start = last - maxLines + 1
		}
		end = min(start+maxLines, len(lines))
	}

	var b strings.Builder
	for _, l := range lines[start:end] {
		b.WriteString(l.text + "\n")
	}
	return b.String()
}

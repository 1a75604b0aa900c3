package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/docduty/internal/state"
	"github.com/naveenspark/docduty/pkg/domain"
)

// snapshot is a consistent read of the schedule state for one render.
type snapshot struct {
	schedules  []domain.DoctorSchedule
	loading    bool
	err        string
	subscribed domain.SubscriptionSet
}

func takeSnapshot(m *state.Manager) snapshot {
	if m == nil {
		return snapshot{}
	}
	return snapshot{
		schedules:  m.Schedules.Get(),
		loading:    m.Loading.Get(),
		err:        m.Error.Get(),
		subscribed: m.Subscribed.Get(),
	}
}

// stateChangedMsg delivers fresh state to the models.
type stateChangedMsg struct {
	snap snapshot
}

// stateWatchMsg is a change delivered by the watcher. The receiver must call
// wait again to keep listening.
type stateWatchMsg struct {
	stateChangedMsg
}

// watcher turns manager change callbacks into bubbletea messages. Bursts of
// changes collapse into a single pending notification.
type watcher struct {
	mgr    *state.Manager
	ch     chan struct{}
	cancel func()
}

func newWatcher(mgr *state.Manager) *watcher {
	w := &watcher{mgr: mgr, ch: make(chan struct{}, 1)}
	if mgr != nil {
		w.cancel = mgr.OnChange(func() {
			select {
			case w.ch <- struct{}{}:
			default:
			}
		})
	}
	return w
}

// wait blocks until the next change and returns it as a message.
func (w *watcher) wait() tea.Cmd {
	if w == nil || w.mgr == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.ch
		return stateWatchMsg{stateChangedMsg{snap: takeSnapshot(w.mgr)}}
	}
}

func (w *watcher) stop() {
	if w != nil && w.cancel != nil {
		w.cancel()
	}
}

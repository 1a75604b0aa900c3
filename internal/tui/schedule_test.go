package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/docduty/internal/repository"
	"github.com/naveenspark/docduty/internal/state"
	"github.com/naveenspark/docduty/pkg/domain"
)

type fakeRepo struct {
	mu         sync.Mutex
	schedules  []domain.DoctorSchedule
	subscribed []string
	err        error
	dates      []string
	toggled    []string
}

func (f *fakeRepo) Schedules(_ context.Context, date string) ([]domain.DoctorSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, date)
	if f.err != nil {
		return nil, f.err
	}
	return f.schedules, nil
}

func (f *fakeRepo) Subscriptions(context.Context, string) ([]string, error) {
	return f.subscribed, nil
}

func (f *fakeRepo) SubscribeDoctor(_ context.Context, _, name string) (string, error) {
	f.toggled = append(f.toggled, "+"+name)
	return "ok", f.err
}

func (f *fakeRepo) UnsubscribeDoctor(_ context.Context, _, name string) (string, error) {
	f.toggled = append(f.toggled, "-"+name)
	return "ok", f.err
}

var fixedNow = func() time.Time { return time.Date(2024, 12, 31, 9, 30, 0, 0, time.UTC) }

func strPtr(s string) *string { return &s }

func testSchedules() []domain.DoctorSchedule {
	return []domain.DoctorSchedule{
		{ID: 1, Date: "31/12/2024", Name: "Dr. Sharma", Timing: "09:00-13:00", Category: "Regular Doctor", Room: strPtr("OPD 1")},
		{ID: 2, Date: "01/01/2025", Name: "Dr. Rao", Timing: "10:00-12:00", Category: "Visiting Cardiologist"},
		{ID: 3, Date: "31/12/2024", Name: "Dr. Iyer", Timing: "14:00-17:00", Category: "Dentist"},
		{ID: 4, Date: "", Name: "Dr. Khan", Timing: "TBD", Category: "Visiting ENT"},
	}
}

func newTestScheduleModel(repo *fakeRepo) scheduleModel {
	m := newScheduleModel(state.NewManager(repo), "dev-1", fixedNow)
	m.width = 100
	m.height = 40
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes a single (non-batch) command and feeds its message back.
func run(t *testing.T, m scheduleModel, cmd tea.Cmd) scheduleModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = m.Update(cmd())
	return m
}

func TestScheduleGroupsByDate(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: testSchedules()}})

	view := m.View()
	for _, want := range []string{"31/12/2024", "01/01/2025", "Unknown Date", "2 doctor(s)", "1 doctor(s)", "Dr. Sharma", "OPD 1", "09:00-13:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}
	// First-seen date order: 31/12 group holds Sharma and Iyer before Rao.
	if strings.Index(view, "Dr. Iyer") > strings.Index(view, "Dr. Rao") {
		t.Error("Dr. Iyer should render in the first group, before Dr. Rao")
	}
}

func TestScheduleLoadingErrorEmptyStates(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})

	m, _ = m.Update(stateChangedMsg{snap: snapshot{loading: true}})
	if !strings.Contains(m.View(), "loading...") {
		t.Errorf("expected loading, got:\n%s", m.View())
	}

	m, _ = m.Update(stateChangedMsg{snap: snapshot{}})
	if !strings.Contains(m.View(), "No schedules found") {
		t.Errorf("expected empty state, got:\n%s", m.View())
	}

	m, _ = m.Update(stateChangedMsg{snap: snapshot{err: "HTTP 500: boom", schedules: testSchedules()}})
	view := m.View()
	if !strings.Contains(view, "error: HTTP 500: boom") || !strings.Contains(view, "Dr. Sharma") {
		t.Errorf("expected error with previous list, got:\n%s", view)
	}
}

func TestScheduleQuickFilters(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"t", "31/12/2024"},
		{"m", "01/01/2025"},
		{"a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			repo := &fakeRepo{schedules: testSchedules()}
			m := newTestScheduleModel(repo)
			m, cmd := m.Update(key(tt.key))
			m = run(t, m, cmd)
			if len(repo.dates) != 1 || repo.dates[0] != tt.want {
				t.Errorf("dates = %q, want [%q]", repo.dates, tt.want)
			}
			if len(m.snap.schedules) != 4 {
				t.Errorf("schedules = %d", len(m.snap.schedules))
			}
		})
	}
}

func TestScheduleCustomDate(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestScheduleModel(repo)

	m, _ = m.Update(key("d"))
	if !m.editing {
		t.Fatal("expected date input")
	}
	for _, r := range "15/01/2025" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	m = run(t, m, cmd)
	if m.editing || m.date != "15/01/2025" || repo.dates[0] != "15/01/2025" {
		t.Errorf("editing=%v date=%q dates=%v", m.editing, m.date, repo.dates)
	}
	if !strings.Contains(m.View(), "[15/01/2025]") {
		t.Errorf("custom date not shown:\n%s", m.View())
	}

	// Quick filter clears the custom date.
	m, cmd = m.Update(key("t"))
	m = run(t, m, cmd)
	if m.date != "" || repo.dates[1] != "31/12/2024" {
		t.Errorf("date=%q dates=%v", m.date, repo.dates)
	}
}

func TestScheduleCustomDateRejectsBadInput(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})
	m, _ = m.Update(key("d"))
	for _, r := range "2025-01-15" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	if cmd != nil || !m.editing {
		t.Error("invalid date should keep the input open")
	}
	if m.statusMsg != "date must be dd/mm/yyyy" {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestScheduleToggleSubscription(t *testing.T) {
	repo := &fakeRepo{schedules: testSchedules()}
	m := newTestScheduleModel(repo)
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: testSchedules()}})

	m, cmd := m.Update(key("s"))
	if cmd == nil {
		t.Fatal("expected toggle command")
	}
	res := cmd().(toggleResultMsg)
	if res.err != nil || !res.subscribed || res.name != "Dr. Sharma" {
		t.Fatalf("toggle = %+v", res)
	}
	m, _ = m.Update(res)
	m, _ = m.Update(stateChangedMsg{snap: takeSnapshot(m.mgr)})

	view := m.View()
	if !strings.Contains(view, "✓ subscribed") || !strings.Contains(view, "Subscribed to Dr. Sharma") {
		t.Errorf("expected subscribed marker, got:\n%s", view)
	}

	_, cmd = m.Update(key("enter"))
	res = cmd().(toggleResultMsg)
	if res.subscribed {
		t.Error("second toggle should unsubscribe")
	}
	if strings.Join(repo.toggled, ",") != "+Dr. Sharma,-Dr. Sharma" {
		t.Errorf("toggled = %v", repo.toggled)
	}
}

func TestScheduleToggleFailureShowsError(t *testing.T) {
	repo := &fakeRepo{err: &repository.Failure{Message: "Failed to subscribe"}}
	m := newTestScheduleModel(repo)
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: testSchedules()}})

	_, cmd := m.Update(key("s"))
	res := cmd().(toggleResultMsg)
	if res.err == nil {
		t.Fatal("expected error")
	}
	m, _ = m.Update(res)
	m, _ = m.Update(stateChangedMsg{snap: takeSnapshot(m.mgr)})
	view := m.View()
	if strings.Contains(view, "✓ subscribed") {
		t.Error("failed subscribe must not mark the doctor")
	}
	if !strings.Contains(view, "Failed to subscribe") {
		t.Errorf("expected error, got:\n%s", view)
	}
}

func TestScheduleCursorNavigation(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: testSchedules()}})

	m, _ = m.Update(key("j"))
	if got := m.rows()[m.cursor].Name; got != "Dr. Iyer" {
		t.Errorf("after j cursor on %q, want Dr. Iyer (grouped order)", got)
	}
	for i := 0; i < 10; i++ {
		m, _ = m.Update(key("j"))
	}
	if m.cursor != 3 {
		t.Errorf("cursor = %d, want clamp at 3", m.cursor)
	}
	m, _ = m.Update(key("k"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d", m.cursor)
	}

	// A shorter list resets an out-of-range cursor.
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: testSchedules()[:1]}})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after shrink", m.cursor)
	}
}

func TestScheduleCategoryBadge(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: testSchedules()}})
	view := m.View()
	for _, cat := range []string{"Regular Doctor", "Dentist", "Visiting Cardiologist"} {
		if !strings.Contains(view, cat) {
			t.Errorf("badge %q missing", cat)
		}
	}
}

func TestScheduleCopyResult(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})
	m, _ = m.Update(copyResultMsg{})
	if m.statusMsg != "copied!" {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
	m, _ = m.Update(copyResultMsg{err: errors.New("no clipboard")})
	if !strings.Contains(m.statusMsg, "copy failed") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestScheduleLine(t *testing.T) {
	got := scheduleLine(testSchedules()[0])
	if got != "Dr. Sharma | Regular Doctor | 09:00-13:00 | OPD 1 | 31/12/2024" {
		t.Errorf("scheduleLine = %q", got)
	}
	got = scheduleLine(testSchedules()[3])
	if got != "Dr. Khan | Visiting ENT | TBD" {
		t.Errorf("scheduleLine = %q", got)
	}
}

func manySchedules(n int) []domain.DoctorSchedule {
	out := make([]domain.DoctorSchedule, n)
	for i := range out {
		out[i] = domain.DoctorSchedule{
			ID:       i + 1,
			Date:     "31/12/2024",
			Name:     fmt.Sprintf("Dr. Roster%02d", i),
			Timing:   "09:00-13:00",
			Category: "Regular Doctor",
		}
	}
	return out
}

func TestScheduleListScrollsWithCursor(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: manySchedules(30)}})

	for i := 0; i < 25; i++ {
		m, _ = m.Update(key("j"))
	}
	if m.cursor != 25 {
		t.Fatalf("cursor = %d, want 25", m.cursor)
	}

	view := m.View()
	if !strings.Contains(view, "Dr. Roster25") {
		t.Errorf("selected row should be visible, got:\n%s", view)
	}
	if strings.Contains(view, "Dr. Roster05") {
		t.Errorf("rows far above the cursor should be scrolled out, got:\n%s", view)
	}
	if lines := strings.Count(view, "\n"); lines > 20 {
		t.Errorf("view has %d lines, want at most 20", lines)
	}
}

func TestScheduleListScrollsBackUp(t *testing.T) {
	m := newTestScheduleModel(&fakeRepo{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m, _ = m.Update(stateChangedMsg{snap: snapshot{schedules: manySchedules(30)}})

	for i := 0; i < 29; i++ {
		m, _ = m.Update(key("j"))
	}
	for i := 0; i < 29; i++ {
		m, _ = m.Update(key("k"))
	}
	view := m.View()
	if !strings.Contains(view, "Dr. Roster00") || !strings.Contains(view, "31/12/2024") {
		t.Errorf("top of the list should be visible again, got:\n%s", view)
	}
}

func TestAppScheduleCursorVisibleAfterResize(t *testing.T) {
	repo := &fakeRepo{schedules: manySchedules(30)}
	mgr := state.NewManager(repo)
	app := NewApp(Options{Manager: mgr, DeviceID: "dev-1", Now: fixedNow})
	defer app.Close()

	var model tea.Model = app
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	model, _ = model.Update(stateChangedMsg{snap: snapshot{schedules: repo.schedules}})
	for i := 0; i < 25; i++ {
		model, _ = model.Update(key("j"))
	}
	if view := model.View(); !strings.Contains(view, "Dr. Roster25") {
		t.Errorf("cursor row should survive the app's height cut, got:\n%s", view)
	}
}

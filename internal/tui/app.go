package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/docduty/internal/state"
)

type view int

const (
	viewSchedule view = iota
	viewNotifications
)

// Options wires the TUI to the rest of the client.
type Options struct {
	Manager  *state.Manager
	Web      EmailSubscriber
	Push     PushEnabler // nil when web push is not configured
	Health   HealthChecker
	DeviceID string
	AppURL   string
	APIURL   string
	Version  string
	Open     func(url string) error
	Now      func() time.Time
}

// App is the root Bubbletea model.
type App struct {
	opts          Options
	watch         *watcher
	view          view
	schedule      scheduleModel
	notifications notificationsModel
	helpOpen      bool
	helpCursor    int
	online        bool
	healthKnown   bool
	width         int
	height        int
	frame         int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(opts Options) App {
	return App{
		opts:          opts,
		watch:         newWatcher(opts.Manager),
		schedule:      newScheduleModel(opts.Manager, opts.DeviceID, opts.Now),
		notifications: newNotificationsModel(opts.Web, opts.Push),
	}
}

// Close unregisters the state watcher.
func (a App) Close() {
	a.watch.stop()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.schedule.Init(), shimmerTickCmd(), a.watch.wait(), checkHealth(a.opts.Health), healthTickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.schedule, _ = a.schedule.Update(bodyMsg)
		a.notifications, _ = a.notifications.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case healthMsg:
		a.healthKnown = true
		a.online = msg.online
		return a, nil

	case healthTickMsg:
		return a, tea.Batch(checkHealth(a.opts.Health), healthTickCmd())

	case stateChangedMsg:
		a.schedule, _ = a.schedule.Update(msg)
		return a, nil

	case stateWatchMsg:
		// Re-arm the watcher after each delivered change.
		a.schedule, _ = a.schedule.Update(msg.stateChangedMsg)
		return a, a.watch.wait()

	case clearToastMsg, emailSubscribedMsg, pushSubscribedMsg, unsubscribedMsg:
		var cmd tea.Cmd
		a.notifications, cmd = a.notifications.Update(msg)
		return a, cmd

	case toggleResultMsg, copyResultMsg:
		var cmd tea.Cmd
		a.schedule, cmd = a.schedule.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.helpOpen {
			items := helpItems(a.opts.AppURL, a.opts.APIURL)
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(items)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				if item := items[a.helpCursor]; item.url != "" && a.opts.Open != nil {
					a.opts.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.isEditing() {
			switch msg.String() {
			case "h", "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				a.view = viewSchedule
				return a, nil
			case "2":
				a.view = viewNotifications
				return a, nil
			case "tab":
				if a.view == viewSchedule {
					a.view = viewNotifications
				} else {
					a.view = viewSchedule
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewSchedule:
		a.schedule, cmd = a.schedule.Update(msg)
	case viewNotifications:
		a.notifications, cmd = a.notifications.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewSchedule:
		return a.schedule.editing
	case viewNotifications:
		return a.notifications.editing || a.notifications.confirming
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	sub := dimStyle.Render("IITJ Health Center . Doctor Schedule")
	if a.healthKnown {
		if a.online {
			sub += "  " + onlineDotStyle.Render("●") + dimStyle.Render(" online")
		} else {
			sub += "  " + offlineDotStyle.Render("●") + dimStyle.Render(" offline")
		}
	}
	if a.opts.Version != "" {
		sub += "  " + metaStyle.Render(a.opts.Version)
	}
	subPad := (a.width - lipgloss.Width(sub)) / 2
	if subPad < 0 {
		subPad = 0
	}
	header += "\n" + strings.Repeat(" ", subPad) + sub

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Schedule", viewSchedule},
		{"2", "Notifications", viewNotifications},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		if t.v == viewSchedule {
			if n := a.schedule.snap.subscribed.Len(); n > 0 {
				label += " " + subscribedStyle.Render(fmt.Sprintf("✓%d", n))
			}
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewSchedule:
		body = a.schedule.View()
		help = " " + helpEntry("1-2", "tabs") + "  " + a.schedule.helpKeys()
	case viewNotifications:
		body = a.notifications.View()
		help = " " + helpEntry("1-2", "tabs") + "  " + a.notifications.helpKeys()
	}
	if !a.isEditing() {
		help += "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	}

	if a.helpOpen {
		body = helpView(helpItems(a.opts.AppURL, a.opts.APIURL), a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}

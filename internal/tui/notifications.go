package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/docduty/internal/push"
	"github.com/naveenspark/docduty/pkg/client"
)

// EmailSubscriber is the repository surface used by the notifications view.
type EmailSubscriber interface {
	SubscribeEmail(ctx context.Context, email string) (*client.StatusResponse, error)
	Unsubscribe(ctx context.Context, email string, subscriptionID int) (string, error)
}

// PushEnabler enables web push for this client.
type PushEnabler interface {
	Subscribe(ctx context.Context) (*client.StatusResponse, error)
}

type notificationsModel struct {
	repo       EmailSubscriber
	pusher     PushEnabler
	email      string
	editing    bool
	busy       bool
	subscribed bool
	subEmail   string
	subID      int
	confirming bool
	toast      toast
	width      int
	height     int
}

type emailSubscribedMsg struct {
	email string
	resp  *client.StatusResponse
	err   error
}

type pushSubscribedMsg struct {
	resp *client.StatusResponse
	err  error
}

type unsubscribedMsg struct{ err error }

func newNotificationsModel(repo EmailSubscriber, pusher PushEnabler) notificationsModel {
	return notificationsModel{repo: repo, pusher: pusher}
}

func (m notificationsModel) Init() tea.Cmd { return nil }

func (m notificationsModel) pushSupported() bool {
	return m.pusher != nil
}

func (m notificationsModel) Update(msg tea.Msg) (notificationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case clearToastMsg:
		m.toast = m.toast.clear(msg)
		return m, nil

	case emailSubscribedMsg:
		m.busy = false
		if msg.err != nil {
			return m.showToast("❌ Subscription failed: "+msg.err.Error(), toastError)
		}
		m.subscribed = true
		m.subEmail = msg.email
		if msg.resp != nil && msg.resp.SubscriptionID != 0 {
			m.subID = msg.resp.SubscriptionID
		}
		m.email = ""
		return m.showToast(fmt.Sprintf("✅ Subscribed successfully! You'll receive email notifications at %s", msg.email), toastSuccess)

	case pushSubscribedMsg:
		m.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, push.ErrUnsupported) {
				return m.showToast("❌ Push notifications are not supported on this system", toastError)
			}
			return m.showToast("❌ Push subscription failed: "+msg.err.Error(), toastError)
		}
		m.subscribed = true
		if msg.resp != nil && msg.resp.SubscriptionID != 0 {
			m.subID = msg.resp.SubscriptionID
		}
		return m.showToast("✅ Push notifications enabled successfully!", toastSuccess)

	case unsubscribedMsg:
		m.busy = false
		if msg.err != nil {
			return m.showToast("❌ Unsubscribe failed: "+msg.err.Error(), toastError)
		}
		m.subscribed = false
		m.subEmail = ""
		m.subID = 0
		return m.showToast("✅ Unsubscribed successfully", toastSuccess)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEmail(msg)
		}
		if m.confirming {
			return m.updateConfirm(msg)
		}
		return m.updateNav(msg)
	}
	return m, nil
}

func (m notificationsModel) showToast(text string, kind toastKind) (notificationsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.toast, cmd = m.toast.show(text, kind)
	return m, cmd
}

func (m notificationsModel) updateEmail(msg tea.KeyMsg) (notificationsModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		email := strings.TrimSpace(m.email)
		if email == "" {
			return m.showToast("Please enter your email", toastError)
		}
		if m.busy {
			return m, nil
		}
		m.editing = false
		m.busy = true
		repo := m.repo
		return m, func() tea.Msg {
			resp, err := repo.SubscribeEmail(context.Background(), email)
			return emailSubscribedMsg{email: email, resp: resp, err: err}
		}
	case "esc":
		m.editing = false
	default:
		m.email = editRune(m.email, msg.String())
	}
	return m, nil
}

func (m notificationsModel) updateConfirm(msg tea.KeyMsg) (notificationsModel, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.confirming = false
		m.busy = true
		repo, email, id := m.repo, m.subEmail, m.subID
		return m, func() tea.Msg {
			_, err := repo.Unsubscribe(context.Background(), email, id)
			return unsubscribedMsg{err: err}
		}
	case "n", "esc":
		m.confirming = false
	}
	return m, nil
}

func (m notificationsModel) updateNav(msg tea.KeyMsg) (notificationsModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "e", "enter":
		m.editing = true
	case "p":
		if !m.pushSupported() {
			return m.showToast("❌ Push notifications are not supported on this system", toastError)
		}
		m.busy = true
		pusher := m.pusher
		return m, func() tea.Msg {
			resp, err := pusher.Subscribe(context.Background())
			return pushSubscribedMsg{resp: resp, err: err}
		}
	case "u":
		if m.subscribed {
			m.confirming = true
		}
	}
	return m, nil
}

func (m notificationsModel) helpKeys() string {
	switch {
	case m.editing:
		return helpEntry("enter", "subscribe") + "  " + helpEntry("esc", "nav")
	case m.confirming:
		return helpEntry("y", "unsubscribe") + "  " + helpEntry("n", "cancel")
	}
	keys := helpEntry("e", "email") + "  " + helpEntry("p", "push")
	if m.subscribed {
		keys += "  " + helpEntry("u", "unsubscribe")
	}
	return keys
}

func (m notificationsModel) View() string {
	var b strings.Builder

	b.WriteString(" " + titleStyle.Render("🔔 Notifications") + "\n")
	b.WriteString(" " + dimStyle.Render("Get notified when doctors are about to start their duty") + "\n\n")

	if t := m.toast.View(); t != "" {
		b.WriteString(" " + t + "\n\n")
	}

	b.WriteString(" " + sectionHeaderStyle.Render("📧 Email Notifications") + "\n")
	b.WriteString(" " + renderInput(">", m.email, "your.email@example.com", m.editing) + "\n\n")

	b.WriteString(" " + sectionHeaderStyle.Render("📱 Push Notifications") + "\n")
	if m.pushSupported() {
		b.WriteString(" " + normalStyle.Render("Enable Push Notifications") + "  " + helpKeyStyle.Render("p") + "\n")
		b.WriteString(" " + metaStyle.Render("Requires a subscription exported from your browser (DOCDUTY_PUSH_SUBSCRIPTION)") + "\n")
	} else {
		b.WriteString(" " + dimStyle.Render("Not Supported") + "\n")
	}

	if m.subscribed {
		b.WriteString("\n " + metaStyle.Render(strings.Repeat("─", 24)) + "\n")
		if m.confirming {
			b.WriteString(" " + errorStyle.Render("Are you sure you want to unsubscribe? (y/n)") + "\n")
		} else {
			b.WriteString(" " + errorStyle.Render("Unsubscribe from All Notifications") + "  " + helpKeyStyle.Render("u") + "\n")
		}
	}

	if m.busy {
		b.WriteString("\n " + dimStyle.Render("working..."))
	}
	return b.String()
}

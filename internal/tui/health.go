package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// healthInterval is how often the header re-checks the API.
const healthInterval = time.Minute

// HealthChecker reports the backend status.
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// healthMsg carries the result of a background health check.
type healthMsg struct {
	online bool
	status string
}

type healthTickMsg struct{}

// checkHealth fires a non-blocking health request. Returns nil without a checker.
func checkHealth(hc HealthChecker) tea.Cmd {
	if hc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := hc.Health(ctx)
		if err != nil {
			return healthMsg{}
		}
		return healthMsg{online: true, status: status}
	}
}

func healthTickCmd() tea.Cmd {
	return tea.Tick(healthInterval, func(time.Time) tea.Msg { return healthTickMsg{} })
}

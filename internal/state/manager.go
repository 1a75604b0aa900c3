package state

import (
	"context"

	"github.com/naveenspark/docduty/internal/repository"
	"github.com/naveenspark/docduty/pkg/domain"
)

// Repo is the repository surface the manager drives.
type Repo interface {
	Schedules(ctx context.Context, date string) ([]domain.DoctorSchedule, error)
	Subscriptions(ctx context.Context, deviceID string) ([]string, error)
	SubscribeDoctor(ctx context.Context, deviceID, doctorName string) (string, error)
	UnsubscribeDoctor(ctx context.Context, deviceID, doctorName string) (string, error)
}

// Manager owns the four independent schedule-screen fields.
type Manager struct {
	Schedules  *Value[[]domain.DoctorSchedule]
	Loading    *Value[bool]
	Error      *Value[string]
	Subscribed *Value[domain.SubscriptionSet]

	repo Repo
}

// NewManager creates a manager with empty state.
func NewManager(repo Repo) *Manager {
	return &Manager{
		Schedules:  NewValue([]domain.DoctorSchedule{}),
		Loading:    NewValue(false),
		Error:      NewValue(""),
		Subscribed: NewValue(domain.NewSubscriptionSet()),
		repo:       repo,
	}
}

// LoadSchedules fetches schedules for date ("" for all). On failure the
// previous list is kept and Error is set.
func (m *Manager) LoadSchedules(ctx context.Context, date string) {
	m.Loading.Set(true)
	m.Error.Set("")

	list, err := m.repo.Schedules(ctx, date)
	if err != nil {
		m.Error.Set(failureMessage(err, "Failed to load schedules"))
		m.Loading.Set(false)
		return
	}
	m.Schedules.Set(list)
	m.Loading.Set(false)
}

// LoadSubscriptions replaces the subscribed set. Failures are ignored.
func (m *Manager) LoadSubscriptions(ctx context.Context, deviceID string) {
	names, err := m.repo.Subscriptions(ctx, deviceID)
	if err != nil {
		return
	}
	m.Subscribed.Set(domain.NewSubscriptionSet(names...))
}

// SubscribeDoctor adds name to the set once the server accepts it.
func (m *Manager) SubscribeDoctor(ctx context.Context, deviceID, name string) error {
	if _, err := m.repo.SubscribeDoctor(ctx, deviceID, name); err != nil {
		m.Error.Set(failureMessage(err, "Failed to subscribe"))
		return err
	}
	m.Subscribed.Update(func(s domain.SubscriptionSet) domain.SubscriptionSet { return s.Add(name) })
	return nil
}

// UnsubscribeDoctor removes name from the set once the server accepts it.
func (m *Manager) UnsubscribeDoctor(ctx context.Context, deviceID, name string) error {
	if _, err := m.repo.UnsubscribeDoctor(ctx, deviceID, name); err != nil {
		m.Error.Set(failureMessage(err, "Failed to unsubscribe"))
		return err
	}
	m.Subscribed.Update(func(s domain.SubscriptionSet) domain.SubscriptionSet { return s.Remove(name) })
	return nil
}

// ToggleDoctor flips the subscription for name and reports whether the
// device is subscribed afterwards.
func (m *Manager) ToggleDoctor(ctx context.Context, deviceID, name string) (bool, error) {
	if m.Subscribed.Get().Contains(name) {
		if err := m.UnsubscribeDoctor(ctx, deviceID, name); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := m.SubscribeDoctor(ctx, deviceID, name); err != nil {
		return false, err
	}
	return true, nil
}

// OnChange calls fn after any field changes. The returned func unregisters it.
func (m *Manager) OnChange(fn func()) (cancel func()) {
	cancels := []func(){
		m.Schedules.Subscribe(func([]domain.DoctorSchedule) { fn() }),
		m.Loading.Subscribe(func(bool) { fn() }),
		m.Error.Subscribe(func(string) { fn() }),
		m.Subscribed.Subscribe(func(domain.SubscriptionSet) { fn() }),
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

func failureMessage(err error, fallback string) string {
	if f, ok := repository.AsFailure(err); ok && f.Message != "" {
		return f.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

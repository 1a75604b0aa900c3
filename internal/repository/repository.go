// Package repository turns API calls into domain values and collapses every
// transport, status and decode error into a single Failure carrying a message.
package repository

import (
	"context"
	"errors"
	"io"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/docduty/pkg/client"
	"github.com/naveenspark/docduty/pkg/domain"
)

// API is the subset of *client.Client the repository depends on.
type API interface {
	GetSchedules(ctx context.Context, date string) (*client.SchedulesResponse, error)
	RegisterPushToken(ctx context.Context, deviceID, token string) (*client.StatusResponse, error)
	SubscribeDoctor(ctx context.Context, deviceID, doctorName string) (*client.StatusResponse, error)
	UnsubscribeDoctor(ctx context.Context, deviceID, doctorName string) (*client.StatusResponse, error)
	GetSubscriptions(ctx context.Context, deviceID string) ([]string, error)
	Subscribe(ctx context.Context, req client.SubscribeRequest) (*client.StatusResponse, error)
	Unsubscribe(ctx context.Context, req client.UnsubscribeRequest) (*client.StatusResponse, error)
	Health(ctx context.Context) (*client.HealthResponse, error)
}

// Failure is the only error type returned by Repository methods.
type Failure struct {
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// AsFailure reports whether err is a *Failure and returns it.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Repository wraps the API client for the state layer.
type Repository struct {
	api API
	log logrus.FieldLogger
}

// New creates a repository. A nil logger discards failure logs.
func New(api API, log logrus.FieldLogger) *Repository {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Repository{api: api, log: log.WithField("component", "repository")}
}

// Schedules returns schedules for date (dd/mm/yyyy), or all when date is "".
func (r *Repository) Schedules(ctx context.Context, date string) ([]domain.DoctorSchedule, error) {
	resp, err := r.api.GetSchedules(ctx, date)
	if err != nil {
		return nil, r.fail("schedules", err, "Failed to load schedules")
	}
	out := make([]domain.DoctorSchedule, len(resp.Data))
	copy(out, resp.Data)
	return out, nil
}

// RegisterPushToken forwards a native push token for deviceID.
func (r *Repository) RegisterPushToken(ctx context.Context, deviceID, token string) (string, error) {
	resp, err := r.api.RegisterPushToken(ctx, deviceID, token)
	if err != nil {
		return "", r.fail("register_push_token", err, "Failed to register push token")
	}
	return resp.Message, nil
}

// SubscribeDoctor subscribes deviceID to doctorName.
func (r *Repository) SubscribeDoctor(ctx context.Context, deviceID, doctorName string) (string, error) {
	resp, err := r.api.SubscribeDoctor(ctx, deviceID, doctorName)
	if err != nil {
		return "", r.fail("subscribe_doctor", err, "Failed to subscribe")
	}
	return resp.Message, nil
}

// UnsubscribeDoctor unsubscribes deviceID from doctorName.
func (r *Repository) UnsubscribeDoctor(ctx context.Context, deviceID, doctorName string) (string, error) {
	resp, err := r.api.UnsubscribeDoctor(ctx, deviceID, doctorName)
	if err != nil {
		return "", r.fail("unsubscribe_doctor", err, "Failed to unsubscribe")
	}
	return resp.Message, nil
}

// Subscriptions returns the doctor names deviceID is subscribed to.
func (r *Repository) Subscriptions(ctx context.Context, deviceID string) ([]string, error) {
	names, err := r.api.GetSubscriptions(ctx, deviceID)
	if err != nil {
		return nil, r.fail("subscriptions", err, "Failed to load subscriptions")
	}
	return names, nil
}

// SubscribeEmail registers email for notification mails.
func (r *Repository) SubscribeEmail(ctx context.Context, email string) (*client.StatusResponse, error) {
	resp, err := r.api.Subscribe(ctx, client.SubscribeRequest{Email: &email})
	if err != nil {
		return nil, r.fail("subscribe_email", err, "Subscription failed")
	}
	return resp, nil
}

// SubscribePush registers a browser push subscription.
func (r *Repository) SubscribePush(ctx context.Context, sub *webpush.Subscription) (*client.StatusResponse, error) {
	resp, err := r.api.Subscribe(ctx, client.SubscribeRequest{PushSubscription: sub})
	if err != nil {
		return nil, r.fail("subscribe_push", err, "Push subscription failed")
	}
	return resp, nil
}

// Unsubscribe deactivates the web subscription for email or subscriptionID.
// Zero values are sent as null.
func (r *Repository) Unsubscribe(ctx context.Context, email string, subscriptionID int) (string, error) {
	var req client.UnsubscribeRequest
	if email != "" {
		req.Email = &email
	}
	if subscriptionID != 0 {
		req.SubscriptionID = &subscriptionID
	}
	resp, err := r.api.Unsubscribe(ctx, req)
	if err != nil {
		return "", r.fail("unsubscribe", err, "Unsubscribe failed")
	}
	return resp.Message, nil
}

// Health returns the backend's reported status string.
func (r *Repository) Health(ctx context.Context) (string, error) {
	resp, err := r.api.Health(ctx)
	if err != nil {
		return "", r.fail("health", err, "API unreachable")
	}
	return resp.Status, nil
}

func (r *Repository) fail(op string, err error, fallback string) *Failure {
	r.log.WithField("op", op).WithError(err).Warn("api call failed")
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return &Failure{Message: msg}
}

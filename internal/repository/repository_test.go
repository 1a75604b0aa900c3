package repository

import (
	"context"
	"errors"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/naveenspark/docduty/pkg/client"
	"github.com/naveenspark/docduty/pkg/domain"
)

type fakeAPI struct {
	schedules   []domain.DoctorSchedule
	subscribed  []string
	err         error
	lastDate    string
	lastDevice  string
	lastDoctor  string
	lastToken   string
	lastSub     client.SubscribeRequest
	lastUnsub   client.UnsubscribeRequest
	subscribeID int
}

func (f *fakeAPI) GetSchedules(_ context.Context, date string) (*client.SchedulesResponse, error) {
	f.lastDate = date
	if f.err != nil {
		return nil, f.err
	}
	return &client.SchedulesResponse{Count: len(f.schedules), Data: f.schedules}, nil
}

func (f *fakeAPI) RegisterPushToken(_ context.Context, deviceID, token string) (*client.StatusResponse, error) {
	f.lastDevice, f.lastToken = deviceID, token
	if f.err != nil {
		return nil, f.err
	}
	return &client.StatusResponse{Status: "success", Message: "Token registered"}, nil
}

func (f *fakeAPI) SubscribeDoctor(_ context.Context, deviceID, name string) (*client.StatusResponse, error) {
	f.lastDevice, f.lastDoctor = deviceID, name
	if f.err != nil {
		return nil, f.err
	}
	return &client.StatusResponse{Status: "success", Message: "Subscribed to " + name}, nil
}

func (f *fakeAPI) UnsubscribeDoctor(_ context.Context, deviceID, name string) (*client.StatusResponse, error) {
	f.lastDevice, f.lastDoctor = deviceID, name
	if f.err != nil {
		return nil, f.err
	}
	return &client.StatusResponse{Status: "success", Message: "Unsubscribed from " + name}, nil
}

func (f *fakeAPI) GetSubscriptions(_ context.Context, deviceID string) ([]string, error) {
	f.lastDevice = deviceID
	if f.err != nil {
		return nil, f.err
	}
	return f.subscribed, nil
}

func (f *fakeAPI) Subscribe(_ context.Context, req client.SubscribeRequest) (*client.StatusResponse, error) {
	f.lastSub = req
	if f.err != nil {
		return nil, f.err
	}
	return &client.StatusResponse{Status: "success", Message: "Subscribed", SubscriptionID: f.subscribeID}, nil
}

func (f *fakeAPI) Unsubscribe(_ context.Context, req client.UnsubscribeRequest) (*client.StatusResponse, error) {
	f.lastUnsub = req
	if f.err != nil {
		return nil, f.err
	}
	return &client.StatusResponse{Status: "success", Message: "Unsubscribed"}, nil
}

func (f *fakeAPI) Health(_ context.Context) (*client.HealthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &client.HealthResponse{Status: "healthy"}, nil
}

func TestSchedules(t *testing.T) {
	room := "R1"
	api := &fakeAPI{schedules: []domain.DoctorSchedule{
		{ID: 1, Date: "15/01/2025", Name: "Dr. A", Timing: "9-5", Category: "Regular", Room: &room},
		{ID: 2, Date: "15/01/2025", Name: "Dr. B", Timing: "10-2", Category: "Visiting"},
	}}
	repo := New(api, nil)

	got, err := repo.Schedules(context.Background(), "15/01/2025")
	if err != nil {
		t.Fatalf("Schedules: %v", err)
	}
	if api.lastDate != "15/01/2025" {
		t.Errorf("date = %q", api.lastDate)
	}
	if len(got) != 2 || got[0].Name != "Dr. A" || got[1].Room != nil {
		t.Errorf("unexpected schedules: %+v", got)
	}
	if got[0].RoomName() != "R1" {
		t.Errorf("room = %q", got[0].RoomName())
	}
}

func TestSchedulesEmptyIsNonNil(t *testing.T) {
	repo := New(&fakeAPI{}, nil)
	got, err := repo.Schedules(context.Background(), "")
	if err != nil {
		t.Fatalf("Schedules: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil", got)
	}
}

func TestFailureCarriesCauseMessage(t *testing.T) {
	cause := errors.New("client.GetSchedules: HTTP 500: boom")
	repo := New(&fakeAPI{err: cause}, nil)

	_, err := repo.Schedules(context.Background(), "")
	f, ok := AsFailure(err)
	if !ok {
		t.Fatalf("expected *Failure, got %T", err)
	}
	if f.Message != cause.Error() {
		t.Errorf("message = %q", f.Message)
	}
	if errors.Is(err, cause) {
		t.Error("cause should not be reachable from Failure")
	}
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestFailureFallbackMessages(t *testing.T) {
	repo := New(&fakeAPI{err: emptyErr{}}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"schedules", func() error { _, err := repo.Schedules(ctx, ""); return err }, "Failed to load schedules"},
		{"subscribe", func() error { _, err := repo.SubscribeDoctor(ctx, "d", "n"); return err }, "Failed to subscribe"},
		{"unsubscribe", func() error { _, err := repo.UnsubscribeDoctor(ctx, "d", "n"); return err }, "Failed to unsubscribe"},
		{"subscriptions", func() error { _, err := repo.Subscriptions(ctx, "d"); return err }, "Failed to load subscriptions"},
		{"token", func() error { _, err := repo.RegisterPushToken(ctx, "d", "t"); return err }, "Failed to register push token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := AsFailure(tt.call())
			if !ok {
				t.Fatal("expected *Failure")
			}
			if f.Message != tt.want {
				t.Errorf("message = %q, want %q", f.Message, tt.want)
			}
		})
	}
}

func TestDoctorCallsForwardArguments(t *testing.T) {
	api := &fakeAPI{}
	repo := New(api, nil)
	ctx := context.Background()

	msg, err := repo.SubscribeDoctor(ctx, "dev-1", "Dr. A")
	if err != nil {
		t.Fatalf("SubscribeDoctor: %v", err)
	}
	if msg != "Subscribed to Dr. A" || api.lastDevice != "dev-1" || api.lastDoctor != "Dr. A" {
		t.Errorf("msg=%q device=%q doctor=%q", msg, api.lastDevice, api.lastDoctor)
	}

	if _, err := repo.UnsubscribeDoctor(ctx, "dev-1", "Dr. B"); err != nil {
		t.Fatalf("UnsubscribeDoctor: %v", err)
	}
	if api.lastDoctor != "Dr. B" {
		t.Errorf("doctor = %q", api.lastDoctor)
	}

	if _, err := repo.RegisterPushToken(ctx, "dev-1", "tok"); err != nil {
		t.Fatalf("RegisterPushToken: %v", err)
	}
	if api.lastToken != "tok" {
		t.Errorf("token = %q", api.lastToken)
	}
}

func TestSubscriptions(t *testing.T) {
	repo := New(&fakeAPI{subscribed: []string{"Dr. A", "Dr. B"}}, nil)
	got, err := repo.Subscriptions(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Subscriptions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %v", got)
	}
}

func TestSubscribeEmailAndPush(t *testing.T) {
	api := &fakeAPI{subscribeID: 7}
	repo := New(api, nil)
	ctx := context.Background()

	resp, err := repo.SubscribeEmail(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("SubscribeEmail: %v", err)
	}
	if resp.SubscriptionID != 7 {
		t.Errorf("id = %d", resp.SubscriptionID)
	}
	if api.lastSub.Email == nil || *api.lastSub.Email != "a@b.c" || api.lastSub.PushSubscription != nil {
		t.Errorf("unexpected request: %+v", api.lastSub)
	}

	sub := &webpush.Subscription{Endpoint: "https://push.example/1"}
	if _, err := repo.SubscribePush(ctx, sub); err != nil {
		t.Fatalf("SubscribePush: %v", err)
	}
	if api.lastSub.PushSubscription != sub || api.lastSub.Email != nil {
		t.Errorf("unexpected request: %+v", api.lastSub)
	}
}

func TestUnsubscribeSendsNullForZeroValues(t *testing.T) {
	api := &fakeAPI{}
	repo := New(api, nil)

	if _, err := repo.Unsubscribe(context.Background(), "a@b.c", 0); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if api.lastUnsub.Email == nil || api.lastUnsub.SubscriptionID != nil {
		t.Errorf("unexpected request: %+v", api.lastUnsub)
	}

	if _, err := repo.Unsubscribe(context.Background(), "", 3); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if api.lastUnsub.Email != nil || api.lastUnsub.SubscriptionID == nil || *api.lastUnsub.SubscriptionID != 3 {
		t.Errorf("unexpected request: %+v", api.lastUnsub)
	}
}

func TestHealth(t *testing.T) {
	got, err := New(&fakeAPI{}, nil).Health(context.Background())
	if err != nil || got != "healthy" {
		t.Errorf("Health = %q, %v", got, err)
	}
}

func TestClientSatisfiesAPI(t *testing.T) {
	var _ API = client.New("http://localhost")
}

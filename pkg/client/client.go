package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/docduty/pkg/domain"
)

// DefaultTimeout bounds every request when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

// SchedulesResponse is the body of GET /schedules.
type SchedulesResponse struct {
	Count int                     `json:"count"`
	Data  []domain.DoctorSchedule `json:"data"`
}

// StatusResponse is the generic {status, message} reply of mutating endpoints.
type StatusResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	DeviceID       string `json:"device_id,omitempty"`
	SubscriptionID int    `json:"subscription_id,omitempty"`
}

// SubscribeRequest is the payload for the web email/push subscription endpoint.
// At least one of Email or PushSubscription must be set.
type SubscribeRequest struct {
	Email            *string               `json:"email"`
	PushSubscription *webpush.Subscription `json:"push_subscription"`
}

// UnsubscribeRequest is the payload for the web unsubscribe endpoint.
type UnsubscribeRequest struct {
	Email          *string `json:"email"`
	SubscriptionID *int    `json:"subscription_id"`
}

// SubscriptionSummary is one row of the GET /subscriptions admin listing.
type SubscriptionSummary struct {
	ID        int     `json:"id"`
	Email     *string `json:"email"`
	HasPush   bool    `json:"has_push"`
	CreatedAt *string `json:"created_at"`
}

// SubscriptionList is the body of GET /subscriptions.
type SubscriptionList struct {
	Count int                   `json:"count"`
	Data  []SubscriptionSummary `json:"data"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Client is the doctor schedule API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger logs each request and response at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client for baseURL (no trailing slash needed).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: trimSlash(baseURL),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetSchedules fetches schedules, filtered to date (dd/mm/yyyy) when non-empty.
func (c *Client) GetSchedules(ctx context.Context, date string) (*SchedulesResponse, error) {
	path := "/schedules"
	if date != "" {
		params := url.Values{}
		params.Set("date", date)
		path += "?" + params.Encode()
	}

	var resp SchedulesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("client.GetSchedules: %w", err)
	}
	return &resp, nil
}

// RegisterPushToken registers or replaces the push token owned by deviceID.
func (c *Client) RegisterPushToken(ctx context.Context, deviceID, token string) (*StatusResponse, error) {
	body := map[string]string{"device_id": deviceID, "fcm_token": token}
	var resp StatusResponse
	if err := c.post(ctx, "/register-fcm-token", body, &resp); err != nil {
		return nil, fmt.Errorf("client.RegisterPushToken: %w", err)
	}
	return &resp, nil
}

// SubscribeDoctor subscribes deviceID to notifications about doctorName.
func (c *Client) SubscribeDoctor(ctx context.Context, deviceID, doctorName string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/subscribe-doctor", doctorRequest(deviceID, doctorName), &resp); err != nil {
		return nil, fmt.Errorf("client.SubscribeDoctor: %w", err)
	}
	return &resp, nil
}

// UnsubscribeDoctor removes doctorName from deviceID's subscriptions.
func (c *Client) UnsubscribeDoctor(ctx context.Context, deviceID, doctorName string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/unsubscribe-doctor", doctorRequest(deviceID, doctorName), &resp); err != nil {
		return nil, fmt.Errorf("client.UnsubscribeDoctor: %w", err)
	}
	return &resp, nil
}

// GetSubscriptions returns the doctor names deviceID is subscribed to.
func (c *Client) GetSubscriptions(ctx context.Context, deviceID string) ([]string, error) {
	var resp struct {
		SubscribedDoctors []string `json:"subscribed_doctors"`
	}
	if err := c.get(ctx, "/subscriptions/"+url.PathEscape(deviceID), &resp); err != nil {
		return nil, fmt.Errorf("client.GetSubscriptions: %w", err)
	}
	if resp.SubscribedDoctors == nil {
		return []string{}, nil
	}
	return resp.SubscribedDoctors, nil
}

// --- Web subscription variant ---

// Subscribe registers an email address and/or a browser push subscription.
func (c *Client) Subscribe(ctx context.Context, req SubscribeRequest) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/subscribe", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Subscribe: %w", err)
	}
	return &resp, nil
}

// Unsubscribe deactivates a subscription by email or subscription ID.
func (c *Client) Unsubscribe(ctx context.Context, req UnsubscribeRequest) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/unsubscribe", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Unsubscribe: %w", err)
	}
	return &resp, nil
}

// ListSubscriptions returns all active web subscriptions (admin listing).
func (c *Client) ListSubscriptions(ctx context.Context) (*SubscriptionList, error) {
	var resp SubscriptionList
	if err := c.get(ctx, "/subscriptions", &resp); err != nil {
		return nil, fmt.Errorf("client.ListSubscriptions: %w", err)
	}
	return &resp, nil
}

// --- Operations ---

// Health calls the API health check.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/health", &resp); err != nil {
		return nil, fmt.Errorf("client.Health: %w", err)
	}
	return &resp, nil
}

// TriggerScrape asks the backend to refresh its schedule data now.
// The result shape is backend-defined and returned as-is.
func (c *Client) TriggerScrape(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/ingest-scraped-data", nil, &resp); err != nil {
		return nil, fmt.Errorf("client.TriggerScrape: %w", err)
	}
	return resp, nil
}

func doctorRequest(deviceID, doctorName string) map[string]string {
	return map[string]string{"device_id": deviceID, "doctor_name": doctorName}
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logf(method, path, 0, start, err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	c.logf(method, path, resp.StatusCode, start, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) logf(method, path string, status int, start time.Time, err error) {
	if c.log == nil {
		return
	}
	entry := c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})
	if err != nil {
		entry.WithError(err).Debug("api request failed")
		return
	}
	entry.WithField("status", status).Debug("api request")
}

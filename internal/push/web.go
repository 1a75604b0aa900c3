package push

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/naveenspark/docduty/pkg/client"
)

var (
	ErrUnsupported       = errors.New("push notifications are not supported")
	ErrInvalidServerKey  = errors.New("invalid VAPID public key")
	ErrPermissionDenied  = errors.New("notification permission denied")
	ErrEmptySubscription = errors.New("push subscription has no endpoint")
)

// ServerKeyLen is the length of an uncompressed P-256 public key.
const ServerKeyLen = 65

// DecodeServerKey decodes a VAPID public key in base64url or standard
// base64, padded or not.
func DecodeServerKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidServerKey)
	}
	s = strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimRight(s, "="))
	key, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerKey, err)
	}
	if len(key) != ServerKeyLen || key[0] != 0x04 {
		return nil, fmt.Errorf("%w: want %d-byte uncompressed point", ErrInvalidServerKey, ServerKeyLen)
	}
	return key, nil
}

// SubscriptionSource obtains a push subscription bound to a server key.
type SubscriptionSource interface {
	Subscription(ctx context.Context, serverKey []byte) (*webpush.Subscription, error)
}

// PermissionFunc asks the user for notification permission.
type PermissionFunc func(ctx context.Context) (bool, error)

// AlwaysGranted is a PermissionFunc for non-interactive use.
func AlwaysGranted(context.Context) (bool, error) { return true, nil }

// PushSubscriber forwards a web push subscription.
type PushSubscriber interface {
	SubscribePush(ctx context.Context, sub *webpush.Subscription) (*client.StatusResponse, error)
}

// WebSubscriber enables web push for this client.
type WebSubscriber struct {
	Repo       PushSubscriber
	ServerKey  string
	Source     SubscriptionSource
	Permission PermissionFunc
}

// Subscribe checks support, decodes the server key, asks permission, obtains
// a subscription and forwards it.
func (w *WebSubscriber) Subscribe(ctx context.Context) (*client.StatusResponse, error) {
	if w.Source == nil {
		return nil, ErrUnsupported
	}
	key, err := DecodeServerKey(w.ServerKey)
	if err != nil {
		return nil, err
	}
	ask := w.Permission
	if ask == nil {
		ask = AlwaysGranted
	}
	ok, err := ask(ctx)
	if err != nil {
		return nil, fmt.Errorf("push.Subscribe: permission: %w", err)
	}
	if !ok {
		return nil, ErrPermissionDenied
	}
	sub, err := w.Source.Subscription(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("push.Subscribe: %w", err)
	}
	if sub == nil || sub.Endpoint == "" {
		return nil, ErrEmptySubscription
	}
	return w.Repo.SubscribePush(ctx, sub)
}

// FileSource reads a subscription exported from a browser
// (PushSubscription.toJSON()).
type FileSource struct {
	Path string
}

// Subscription reads and validates the exported JSON.
func (f FileSource) Subscription(_ context.Context, _ []byte) (*webpush.Subscription, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read subscription: %w", err)
	}
	return ParseSubscription(data)
}

// ParseSubscription decodes a subscription JSON document.
func ParseSubscription(data []byte) (*webpush.Subscription, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("parse subscription: %w", err)
	}
	if sub.Endpoint == "" {
		return nil, ErrEmptySubscription
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return nil, fmt.Errorf("parse subscription: missing keys")
	}
	return &sub, nil
}

// Keys is a VAPID key pair, base64url encoded.
type Keys struct {
	PublicKey  string
	PrivateKey string
}

// GenerateKeys creates a VAPID key pair for backend setup.
func GenerateKeys() (Keys, error) {
	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return Keys{}, fmt.Errorf("push.GenerateKeys: %w", err)
	}
	return Keys{PublicKey: pub, PrivateKey: priv}, nil
}

// Package push wires native push tokens and web push subscriptions to the
// backend.
package push

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/naveenspark/docduty/internal/identity"
)

// ErrNoToken is returned by a TokenSource that has nothing to offer.
var ErrNoToken = errors.New("push: no token available")

// TokenRegistrar forwards a token for a device.
type TokenRegistrar interface {
	RegisterPushToken(ctx context.Context, deviceID, token string) (string, error)
}

// TokenSource yields the current platform push token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource is a token supplied by config or flag.
type StaticTokenSource string

// Token returns the static token, or ErrNoToken when it is empty.
func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Registrar registers this device's push token with the backend.
type Registrar struct {
	Repo   TokenRegistrar
	Store  identity.Store
	Tokens TokenSource
	Log    logrus.FieldLogger
}

// Register fetches the current token and forwards it once. Errors are
// logged, not returned; it reports whether the token was accepted.
func (r *Registrar) Register(ctx context.Context) bool {
	if r.Tokens == nil {
		r.logger().Debug("no token source configured")
		return false
	}
	token, err := r.Tokens.Token(ctx)
	if err != nil {
		r.logger().WithError(err).Info("push token unavailable")
		return false
	}
	return r.OnNewToken(ctx, token)
}

// OnNewToken forwards a refreshed token.
func (r *Registrar) OnNewToken(ctx context.Context, token string) bool {
	log := r.logger()
	deviceID, err := identity.DeviceID(r.Store)
	if err != nil {
		log.WithError(err).Warn("device id unavailable")
		return false
	}
	log = log.WithField("device_id", deviceID)
	msg, err := r.Repo.RegisterPushToken(ctx, deviceID, token)
	if err != nil {
		log.WithError(err).Warn("push token registration failed")
		return false
	}
	log.WithField("message", msg).Info("push token registered")
	return true
}

func (r *Registrar) logger() logrus.FieldLogger {
	if r.Log != nil {
		return r.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

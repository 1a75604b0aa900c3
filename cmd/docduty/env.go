package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/naveenspark/docduty/internal/config"
	"github.com/naveenspark/docduty/internal/identity"
	"github.com/naveenspark/docduty/internal/identity/sqlstore"
	"github.com/naveenspark/docduty/internal/logging"
	"github.com/naveenspark/docduty/internal/repository"
	"github.com/naveenspark/docduty/pkg/client"
)

// appEnv holds everything a command needs, built from config.
type appEnv struct {
	cfg   *config.Config
	log   *logrus.Logger
	store identity.Store
	api   *client.Client
	repo  *repository.Repository

	closers []func() error
}

// dotenvPath is read before the environment; a missing file is fine.
var dotenvPath = ".env"

// newAppEnv loads config and opens the store. When logTo is nil, logs go to
// the file under DOCDUTY_HOME so they stay out of the TUI.
func newAppEnv(logTo io.Writer) (*appEnv, error) {
	cfg, err := config.Load(dotenvPath)
	if err != nil {
		return nil, err
	}

	e := &appEnv{cfg: cfg}
	if logTo != nil {
		e.log, err = logging.New(logTo, cfg.Log.Level)
	} else {
		var closeLog func() error
		e.log, closeLog, err = logging.NewFile(cfg.LogPath(), cfg.Log.Level)
		if closeLog != nil {
			e.closers = append(e.closers, closeLog)
		}
	}
	if err != nil {
		return nil, err
	}

	switch cfg.Store.Kind {
	case config.StoreSQLite:
		s, err := sqlstore.Open(cfg.StorePath())
		if err != nil {
			e.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("open store: %w", err)
		}
		e.store = s
		e.closers = append(e.closers, s.Close)
	default:
		e.store = identity.NewFileStore(cfg.StorePath())
	}

	e.api = client.New(cfg.API.URL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(e.log.WithField("component", "client")),
	)
	e.repo = repository.New(e.api, e.log)
	e.log.WithFields(logrus.Fields{
		"api":   cfg.API.URL,
		"store": string(cfg.Store.Kind),
	}).Debug("environment ready")
	return e, nil
}

// deviceID returns the persistent device id, creating it on first use.
func (e *appEnv) deviceID() (string, error) {
	return identity.DeviceID(e.store)
}

// Close releases the store and log file in reverse order.
func (e *appEnv) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

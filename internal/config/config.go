// Package config loads client settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
)

type Config struct {
	API struct {
		URL     string        `env:"DOCDUTY_API_URL" envDefault:"http://localhost:8000"`
		Timeout time.Duration `env:"DOCDUTY_HTTP_TIMEOUT" envDefault:"30s"`
	}

	App struct {
		URL string `env:"DOCDUTY_APP_URL" envDefault:"http://localhost:5173/"`
	}

	Push struct {
		VAPIDPublicKey   string `env:"DOCDUTY_VAPID_PUBLIC_KEY"`
		FCMToken         string `env:"DOCDUTY_FCM_TOKEN"`
		// SubscriptionFile is a PushSubscription exported from a browser as JSON.
		SubscriptionFile string `env:"DOCDUTY_PUSH_SUBSCRIPTION"`
		ListenAddr       string `env:"DOCDUTY_LISTEN_ADDR" envDefault:"127.0.0.1:8765"`
	}

	Store struct {
		Home string    `env:"DOCDUTY_HOME"`
		Kind StoreKind `env:"DOCDUTY_STORE" envDefault:"file"`
	}

	Log struct {
		Level string `env:"DOCDUTY_LOG_LEVEL" envDefault:"info"`
	}
}

// Load reads dotenv (if present) and then the process environment. Values
// already in the environment win over the file.
func Load(dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}
	return NewConfig()
}

// NewConfig parses the process environment.
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}

	cfg.API.URL = strings.TrimRight(strings.TrimSpace(cfg.API.URL), "/")
	cfg.Store.Kind = StoreKind(strings.ToLower(string(cfg.Store.Kind)))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	home, err := expandHome(cfg.Store.Home)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}
	cfg.Store.Home = home

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.URL == "" {
		return errors.New("config: DOCDUTY_API_URL must not be empty")
	}
	switch c.Store.Kind {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("config: DOCDUTY_STORE must be %q or %q, got %q", StoreFile, StoreSQLite, c.Store.Kind)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: DOCDUTY_HTTP_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	return nil
}

// StorePath is the identity store file for the configured kind.
func (c *Config) StorePath() string {
	if c.Store.Kind == StoreSQLite {
		return filepath.Join(c.Store.Home, "docduty.db")
	}
	return filepath.Join(c.Store.Home, "prefs.json")
}

// LogPath is where logs go while the TUI owns the terminal.
func (c *Config) LogPath() string {
	return filepath.Join(c.Store.Home, "docduty.log")
}

func expandHome(p string) (string, error) {
	if p != "" && p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "" {
		return filepath.Join(userHome, ".docduty"), nil
	}
	return filepath.Join(userHome, strings.TrimPrefix(p, "~")), nil
}

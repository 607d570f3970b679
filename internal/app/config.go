package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// AppName names the per-application storage location. Required.
	AppName string
	// OrgName optionally scopes AppName, producing "org.app" directories
	// and remote keys.
	OrgName string

	// Storage selects the backend: "file" (default), "remote", "memory"
	// (kept in process, for tests), or "none" (preferences never persisted).
	Storage string
	// StorageDir overrides the parent directory under which the file backend
	// creates its per-application "org.app" directory. Empty means the OS
	// user config directory.
	StorageDir string
	// Format selects the document format: "hcl" (default) or "json".
	Format string

	// RemoteURL is the sync service URL for the remote backend.
	RemoteURL string
	// RemoteInsecureSkipVerify disables TLS verification for the remote backend.
	RemoteInsecureSkipVerify bool

	// SaveInterval is the debounce interval between saves. Zero means the
	// scheduler default.
	SaveInterval time.Duration
	// TickRate is how often the Run loop steps the scheduler. Zero means 100ms.
	TickRate time.Duration

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.AppName == "" {
		return nil, errors.New("AppName is a required configuration field and cannot be empty")
	}

	switch cfg.Storage {
	case "", "file", "remote", "memory", "none":
	default:
		return nil, fmt.Errorf("invalid storage %q: must be 'file', 'remote', 'memory' or 'none'", cfg.Storage)
	}
	if cfg.Storage == "remote" && cfg.RemoteURL == "" {
		return nil, errors.New("remote storage requires RemoteURL")
	}

	if cfg.TickRate <= 0 {
		cfg.TickRate = 100 * time.Millisecond
	}

	return &cfg, nil
}

// fullAppName joins org and app the way the storage naming expects.
func (c *Config) fullAppName() string {
	if c.OrgName != "" {
		return c.OrgName + "." + c.AppName
	}
	return c.AppName
}

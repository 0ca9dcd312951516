package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".freightflow"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file. FREIGHTFLOW_CONFIG
// overrides the default ~/.freightflow/config.json.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("FREIGHTFLOW_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults. A missing config file is not
// an error; defaults apply. Reconfiguring means calling Load again and
// constructing new components from the result, never mutating a Config
// shared with running components.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	envconfig.Process("FREIGHTFLOW_TELEGRAM", &cfg.Telegram)
	envconfig.Process("FREIGHTFLOW_GUARD", &cfg.Guard)
	envconfig.Process("FREIGHTFLOW_WORKFLOW", &cfg.Workflow)
	envconfig.Process("FREIGHTFLOW_BOOKING", &cfg.Booking)

	// Legacy env var compatibility for the bare token.
	if cfg.Telegram.Token == "" {
		if tok := os.Getenv("TELEGRAM_BOT_TOKEN"); tok != "" {
			cfg.Telegram.Token = tok
		}
	}

	return cfg, nil
}

// Save writes the configuration to the config file, creating the
// directory if needed. Secrets are redacted before writing.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	redacted := *cfg
	if redacted.Telegram.Token != "" {
		redacted.Telegram.Token = "***REDACTED***"
	}
	if redacted.Booking.AuthToken != "" {
		redacted.Booking.AuthToken = "***REDACTED***"
	}

	data, err := json.MarshalIndent(&redacted, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

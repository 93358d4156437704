// Package config loads bchq settings: built-in defaults, then an optional YAML
// file, then BCHQ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/beautycrafthq/bchq/internal/logging"
	"github.com/beautycrafthq/bchq/internal/storage"
)

// DefaultAPIURL is used when neither the file nor the environment names a backend.
const DefaultAPIURL = "https://api.beautycrafthq.com"

// Config is the resolved CLI configuration.
type Config struct {
	APIURL          string        `yaml:"api_url"          env:"BCHQ_API_URL"`
	StateDir        string        `yaml:"state_dir"        env:"BCHQ_STATE_DIR"`
	Store           string        `yaml:"store"            env:"BCHQ_STORE"`
	LogLevel        string        `yaml:"log_level"        env:"BCHQ_LOG_LEVEL"`
	LogFormat       string        `yaml:"log_format"       env:"BCHQ_LOG_FORMAT"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"BCHQ_REQUEST_TIMEOUT"`
	CallbackTimeout time.Duration `yaml:"callback_timeout" env:"BCHQ_CALLBACK_TIMEOUT"`
	RedirectDelay   time.Duration `yaml:"redirect_delay"   env:"BCHQ_REDIRECT_DELAY"`

	// Token overrides the persisted session token. Environment only.
	Token string `yaml:"-" env:"BCHQ_TOKEN"`

	// Path is the config file that was read, empty when none existed.
	Path string `yaml:"-"`
}

// Default returns the built-in settings rooted at home.
func Default(home string) Config {
	return Config{
		APIURL:          DefaultAPIURL,
		StateDir:        filepath.Join(home, ".beautycraft"),
		Store:           storage.BackendFile,
		LogLevel:        "warn",
		LogFormat:       logging.FormatText,
		RequestTimeout:  30 * time.Second,
		CallbackTimeout: 2 * time.Minute,
		RedirectDelay:   300 * time.Millisecond,
	}
}

// Load reads the configuration for the current user and process environment.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: get home dir: %w", err)
	}
	path := os.Getenv("BCHQ_CONFIG")
	if path == "" {
		path = filepath.Join(home, ".beautycraft", "config.yaml")
	}
	return LoadFrom(home, path, nil)
}

// LoadFrom resolves settings from the file at path (which may be absent) and
// environ. A nil environ means the process environment.
func LoadFrom(home, path string, environ map[string]string) (Config, error) {
	cfg := Default(home)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
			cfg.Path = path
		}
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api_url %q must be an http(s) URL", c.APIURL)
	}
	switch c.Store {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("config: store %q must be file, sqlite or memory", c.Store)
	}
	if c.Store != storage.BackendMemory && c.StateDir == "" {
		return errors.New("config: state_dir is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: log_level %q must be debug, info, warn or error", c.LogLevel)
	}
	if c.LogFormat != logging.FormatText && c.LogFormat != logging.FormatJSON {
		return fmt.Errorf("config: log_format %q must be text or json", c.LogFormat)
	}
	if c.RequestTimeout <= 0 || c.CallbackTimeout <= 0 {
		return errors.New("config: timeouts must be positive")
	}
	if c.RedirectDelay < 0 {
		return errors.New("config: redirect_delay must not be negative")
	}
	return nil
}

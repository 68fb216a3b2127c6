// Package config loads the console configuration: defaults, then an
// optional YAML file, then DISKCONSOLE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all console settings.
type Config struct {
	// Remote simulator
	Remote RemoteConfig `yaml:"remote"`

	// Session state and journal
	StateDir string `yaml:"state_dir"`

	// Editor behaviour
	Editor EditorConfig `yaml:"editor"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type RemoteConfig struct {
	BaseURL        string `yaml:"base_url"`
	Timeout        string `yaml:"timeout"`
	DisableNetwork bool   `yaml:"disable_network"`
}

type EditorConfig struct {
	// Offer the completion popup automatically while typing.
	AutoComplete bool `yaml:"auto_complete"`
	// Maximum remembered commands.
	HistoryLimit int `yaml:"history_limit"`
	// Debounce for script file reloads, e.g. "150ms".
	WatchDebounce string `yaml:"watch_debounce"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // relative to the session dir when not absolute
}

// DefaultConfig matches the simulator's local development setup.
func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "30s",
		},
		StateDir: ".diskconsole",
		Editor: EditorConfig{
			AutoComplete:  true,
			HistoryLimit:  50,
			WatchDebounce: "150ms",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "console.log",
		},
	}
}

// DefaultPath is config.yaml inside the state dir. stateDir wins, then
// DISKCONSOLE_STATE_DIR, then the default state dir.
func DefaultPath(stateDir string) string {
	return filepath.Join(resolveStateDir(stateDir), "config.yaml")
}

func resolveStateDir(stateDir string) string {
	if v := strings.TrimSpace(stateDir); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("DISKCONSOLE_STATE_DIR")); v != "" {
		return v
	}
	return DefaultConfig().StateDir
}

// Load reads path over the defaults. An empty path means DefaultPath(stateDir),
// and a missing file there is not an error. A non-empty stateDir overrides
// both the file and the environment.
func Load(path, stateDir string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath(stateDir)
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	if v := strings.TrimSpace(stateDir); v != "" {
		cfg.StateDir = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("DISKCONSOLE_BASE_URL")); v != "" {
		c.Remote.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DISKCONSOLE_TIMEOUT")); v != "" {
		c.Remote.Timeout = v
	}
	if v := strings.TrimSpace(os.Getenv("DISKCONSOLE_STATE_DIR")); v != "" {
		c.StateDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DISKCONSOLE_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v, ok := envBool("DISKCONSOLE_DISABLE_NETWORK"); ok {
		c.Remote.DisableNetwork = v
	}
	if v := strings.TrimSpace(os.Getenv("DISKCONSOLE_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Editor.HistoryLimit = n
		}
	}
}

// Validate checks the values that are parsed later.
func (c *Config) Validate() error {
	if !c.Remote.DisableNetwork && strings.TrimSpace(c.Remote.BaseURL) == "" {
		return errors.New("config: remote.base_url is required")
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if _, err := c.Debounce(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

// RequestTimeout parses Remote.Timeout. Empty means no timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	return parseDuration("remote.timeout", c.Remote.Timeout)
}

func (c *Config) Debounce() (time.Duration, error) {
	return parseDuration("editor.watch_debounce", c.Editor.WatchDebounce)
}

func parseDuration(field, v string) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", field)
	}
	return d, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func envBool(name string) (bool, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false, false
	}
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on"), true
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the dashboard.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.dashboard/config.toml
//   - ~/.dashboard/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mstacm/dashboard-tui/internal/util"
)

// DefaultConsoleURL is the AWS access portal opened from the granted state.
const DefaultConsoleURL = "https://mstacm.awsapps.com/start#/"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete dashboard configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// User-record API the profile view talks to
	API APIConfig `toml:"api" json:"api"`

	// Where the session token (identity) comes from
	Session SessionConfig `toml:"session" json:"session"`

	// Profile view behaviour
	Profile ProfileConfig `toml:"profile" json:"profile"`

	// Development user-record API
	Server ServerConfig `toml:"server" json:"server"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`
}

// APIConfig contains user-record API client settings.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://127.0.0.1:8790/api
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each HTTP request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries applies to reads only; the access request is never retried
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RetryDelayMs is the pause between read retries
	RetryDelayMs int `toml:"retry_delay_ms" json:"retry_delay_ms"`
	// RequestsPerSecond paces outgoing calls (0 = unlimited)
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// SessionConfig describes how the current identity is obtained.
type SessionConfig struct {
	// Token is an inline session token. Takes precedence over TokenFile.
	Token string `toml:"token" json:"token,omitempty"`
	// TokenFile holds the session token written by the identity provider.
	// Default: ~/.dashboard/session.token
	TokenFile string `toml:"token_file" json:"token_file"`
	// WatchTokenFile re-resolves identity whenever the token file changes
	WatchTokenFile bool `toml:"watch_token_file" json:"watch_token_file"`
}

// ProfileConfig controls polling and banner timing for the profile view.
type ProfileConfig struct {
	// PollIntervalMs is the user-record refetch interval while focused
	PollIntervalMs int `toml:"poll_interval_ms" json:"poll_interval_ms"`
	// RefetchOnFocus fetches immediately when the terminal regains focus
	RefetchOnFocus bool `toml:"refetch_on_focus" json:"refetch_on_focus"`
	// PollInBackground keeps polling while the terminal is unfocused
	PollInBackground bool `toml:"poll_in_background" json:"poll_in_background"`
	// SuccessBannerMs is how long the success banner stays up
	SuccessBannerMs int `toml:"success_banner_ms" json:"success_banner_ms"`
	// ErrorBannerMs is how long the error banner stays up
	ErrorBannerMs int `toml:"error_banner_ms" json:"error_banner_ms"`
	// ConsoleURL is opened from the granted state
	ConsoleURL string `toml:"console_url" json:"console_url"`
}

// ServerConfig contains settings for the development user-record API.
type ServerConfig struct {
	// ListenAddr is the host:port to bind
	ListenAddr string `toml:"listen_addr" json:"listen_addr"`
	// DBPath is the SQLite database file
	DBPath string `toml:"db_path" json:"db_path"`
	// SigningKey verifies and mints HS256 session tokens
	SigningKey string `toml:"signing_key" json:"signing_key,omitempty"`
	// AllowedOrigins lists browser origins allowed by CORS
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
	// RateLimitPerSecond is the per-client request rate
	RateLimitPerSecond float64 `toml:"rate_limit_per_second" json:"rate_limit_per_second"`
	// RateLimitBurst is the per-client burst size
	RateLimitBurst int `toml:"rate_limit_burst" json:"rate_limit_burst"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// File receives TUI logs (the terminal is owned by the view)
	File string `toml:"file" json:"file"`
	// Verbose enables per-poll logging
	Verbose bool `toml:"verbose" json:"verbose"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:           "http://127.0.0.1:8790/api",
			TimeoutSecs:       10,
			MaxRetries:        3,
			RetryDelayMs:      1000,
			RequestsPerSecond: 10,
		},

		Session: SessionConfig{
			WatchTokenFile: true,
		},

		Profile: ProfileConfig{
			PollIntervalMs:   500,
			RefetchOnFocus:   true,
			PollInBackground: false,
			SuccessBannerMs:  3000,
			ErrorBannerMs:    5000,
			ConsoleURL:       DefaultConsoleURL,
		},

		Server: ServerConfig{
			ListenAddr:         "127.0.0.1:8790",
			AllowedOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimitPerSecond: 20,
			RateLimitBurst:     40,
		},
	}
}

// Durations derived from the millisecond settings.

// PollInterval returns the profile poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Profile.PollIntervalMs) * time.Millisecond
}

// SuccessBannerDuration returns how long the success banner is shown.
func (c *Config) SuccessBannerDuration() time.Duration {
	return time.Duration(c.Profile.SuccessBannerMs) * time.Millisecond
}

// ErrorBannerDuration returns how long the error banner is shown.
func (c *Config) ErrorBannerDuration() time.Duration {
	return time.Duration(c.Profile.ErrorBannerMs) * time.Millisecond
}

// APITimeout returns the per-request API timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// RetryDelay returns the pause between read retries.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.API.RetryDelayMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the dashboard configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DASHBOARD_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".dashboard"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config files to 0600; they may hold a
// session token or the dev signing key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	// Defaults, with any load error for informational purposes
	return cfg, loadErr
}

// LoadFromPath loads configuration from an explicit file. The format is
// chosen by extension; anything other than .json is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides, defaults, and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# dashboard configuration file\n")
	b.WriteString("# Generated by dashboard - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateHTTPURL(c.API.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: err.Error()})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "api.max_retries",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.API.MaxRetries),
		})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_second", Message: "must not be negative"})
	}

	// Anything faster than 100ms hammers the backend for no visible gain
	if c.Profile.PollIntervalMs < 100 {
		errs = append(errs, ValidationError{
			Field:   "profile.poll_interval_ms",
			Message: fmt.Sprintf("must be at least 100, got %d", c.Profile.PollIntervalMs),
		})
	}
	if c.Profile.SuccessBannerMs <= 0 {
		errs = append(errs, ValidationError{Field: "profile.success_banner_ms", Message: "must be positive"})
	}
	if c.Profile.ErrorBannerMs <= 0 {
		errs = append(errs, ValidationError{Field: "profile.error_banner_ms", Message: "must be positive"})
	}
	if err := validateHTTPURL(c.Profile.ConsoleURL); err != nil {
		errs = append(errs, ValidationError{Field: "profile.console_url", Message: err.Error()})
	}

	if c.Server.ListenAddr != "" && !strings.Contains(c.Server.ListenAddr, ":") {
		errs = append(errs, ValidationError{
			Field:   "server.listen_addr",
			Message: fmt.Sprintf("invalid address '%s', expected host:port", c.Server.ListenAddr),
		})
	}
	if c.Server.RateLimitPerSecond < 0 || c.Server.RateLimitBurst < 0 {
		errs = append(errs, ValidationError{Field: "server.rate_limit_per_second", Message: "rate limits must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid scheme '%s', must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// SetDefaults fills in zero-valued fields from Default().
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.API.RetryDelayMs == 0 {
		c.API.RetryDelayMs = defaults.API.RetryDelayMs
	}

	if c.Session.TokenFile == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Session.TokenFile = filepath.Join(dir, "session.token")
		}
	}

	if c.Profile.PollIntervalMs == 0 {
		c.Profile.PollIntervalMs = defaults.Profile.PollIntervalMs
	}
	if c.Profile.SuccessBannerMs == 0 {
		c.Profile.SuccessBannerMs = defaults.Profile.SuccessBannerMs
	}
	if c.Profile.ErrorBannerMs == 0 {
		c.Profile.ErrorBannerMs = defaults.Profile.ErrorBannerMs
	}
	if c.Profile.ConsoleURL == "" {
		c.Profile.ConsoleURL = defaults.Profile.ConsoleURL
	}

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = defaults.Server.ListenAddr
	}
	if c.Server.DBPath == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Server.DBPath = filepath.Join(dir, "users.db")
		}
	}
	if c.Server.RateLimitPerSecond == 0 {
		c.Server.RateLimitPerSecond = defaults.Server.RateLimitPerSecond
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = defaults.Server.RateLimitBurst
	}

	if c.Log.File == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Log.File = filepath.Join(dir, "dashboard.log")
		}
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DASHBOARD_API_URL: overrides api.base_url
//   - DASHBOARD_TOKEN: overrides session.token
//   - DASHBOARD_TOKEN_FILE: overrides session.token_file
//   - DASHBOARD_POLL_MS: overrides profile.poll_interval_ms
//   - DASHBOARD_CONSOLE_URL: overrides profile.console_url
//   - DASHBOARD_LISTEN_ADDR: overrides server.listen_addr
//   - DASHBOARD_DB_PATH: overrides server.db_path
//   - DASHBOARD_SIGNING_KEY: overrides server.signing_key
//   - DASHBOARD_VERBOSE: overrides log.verbose
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DASHBOARD_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DASHBOARD_TOKEN"); v != "" {
		c.Session.Token = v
	}
	if v := os.Getenv("DASHBOARD_TOKEN_FILE"); v != "" {
		c.Session.TokenFile = v
	}
	if v := os.Getenv("DASHBOARD_POLL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Profile.PollIntervalMs = ms
		}
	}
	if v := os.Getenv("DASHBOARD_CONSOLE_URL"); v != "" {
		c.Profile.ConsoleURL = v
	}
	if v := os.Getenv("DASHBOARD_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("DASHBOARD_DB_PATH"); v != "" {
		c.Server.DBPath = v
	}
	if v := os.Getenv("DASHBOARD_SIGNING_KEY"); v != "" {
		c.Server.SigningKey = v
	}
	if v := os.Getenv("DASHBOARD_VERBOSE"); v != "" {
		c.Log.Verbose = v == "1" || strings.ToLower(v) == "true"
	}
}

// String renders the config as TOML with secrets masked.
func (c *Config) String() string {
	clone := *c
	if clone.Session.Token != "" {
		clone.Session.Token = "********"
	}
	if clone.Server.SigningKey != "" {
		clone.Server.SigningKey = "********"
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(&clone); err != nil {
		return fmt.Sprintf("<config encode error: %v>", err)
	}
	return b.String()
}

// =============================================================================
// GLOBAL CONFIG INSTANCE
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	// Mark as loaded so a later Global() does not clobber cfg
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

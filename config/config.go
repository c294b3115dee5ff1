// Package config provides YAML configuration parsing for gardenwatch.
//
// This package enables running gardenwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Community Garden
//	port: 8080
//	server_url: ${GARDEN_URL:-http://localhost:3000}
//	poll_interval: 125ms
//	timeout: 10s
//	failure_threshold: 50
//	watcher_id: true
//	counts: true
//	reset_policy: valid_payload
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval.
// This prevents accidental hammering of the garden server.
const minPollInterval = 10 * time.Millisecond

// Defaults applied by [Parse].
const (
	DefaultPort             = 8080
	DefaultPollInterval     = 125 * time.Millisecond
	DefaultTimeout          = 10 * time.Second
	DefaultFailureThreshold = 50
)

// Reset policy names accepted in reset_policy.
const (
	ResetPolicyValidPayload = "valid_payload"
	ResetPolicyReachable    = "reachable"
)

// Config is the root configuration structure for gardenwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Garden" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// ServerURL is the base URL of the garden server.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	ServerURL string `yaml:"server_url"`

	// PollInterval is the time between polling cycles.
	// Accepts duration strings like "125ms", "1s". Defaults to 125ms.
	PollInterval Duration `yaml:"poll_interval"`

	// Timeout bounds each update request. "0s" disables the bound.
	// Defaults to 10s when omitted.
	Timeout *Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failed cycles tolerated
	// before disconnecting. Defaults to 50.
	FailureThreshold int `yaml:"failure_threshold"`

	// WatcherID sends a random watcher ID with every request.
	// Defaults to true when omitted.
	WatcherID *bool `yaml:"watcher_id"`

	// Counts requires numPlants and numWatchers in every payload.
	// Defaults to true when omitted.
	Counts *bool `yaml:"counts"`

	// ResetPolicy is "valid_payload" (default) or "reachable".
	ResetPolicy string `yaml:"reset_policy"`
}

// WatcherIDEnabled reports the effective watcher_id setting.
func (c *Config) WatcherIDEnabled() bool {
	return c.WatcherID == nil || *c.WatcherID
}

// CountsRequired reports the effective counts setting.
func (c *Config) CountsRequired() bool {
	return c.Counts == nil || *c.Counts
}

// RequestTimeout reports the effective timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout == nil {
		return DefaultTimeout
	}
	return c.Timeout.Duration()
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in server_url are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Defaults are applied for Port (8080), PollInterval (125ms), Timeout (10s),
// FailureThreshold (50) and ResetPolicy (valid_payload).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(DefaultPollInterval)
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.ResetPolicy == "" {
		cfg.ResetPolicy = ResetPolicyValidPayload
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	expanded, err := expandEnvVars(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url: %w", err)
	}
	c.ServerURL = expanded

	parsedURL, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("server_url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("server_url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("server_url must have a host")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.Timeout != nil && c.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout.Duration())
	}

	if c.FailureThreshold < 0 {
		return fmt.Errorf("failure_threshold cannot be negative, got %d", c.FailureThreshold)
	}

	switch c.ResetPolicy {
	case ResetPolicyValidPayload, ResetPolicyReachable:
	default:
		return fmt.Errorf("reset_policy must be %q or %q, got %q",
			ResetPolicyValidPayload, ResetPolicyReachable, c.ResetPolicy)
	}

	return nil
}

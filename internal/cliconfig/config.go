package cliconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/rtfeed/pkg/realtime"
)

// Config holds CLI configuration for rtfeed.
type Config struct {
	Host     string `json:"host"`
	APIKey   string `json:"api_key"`
	Insecure bool   `json:"insecure"`

	Schema string `json:"schema"`
	Table  string `json:"table"`
	Event  string `json:"event"`

	HeartbeatInterval time.Duration `json:"heartbeat_interval"`
	ReconnectDelay    time.Duration `json:"reconnect_delay"`
	ReconnectMaxDelay time.Duration `json:"reconnect_max_delay"`
	HandshakeTimeout  time.Duration `json:"handshake_timeout"`

	JournalPath   string        `json:"journal_path"`
	JournalMaxAge time.Duration `json:"journal_max_age"`
	PayloadSchema string        `json:"payload_schema"`

	LogLevel string `json:"log_level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Schema:            realtime.DefaultSchema,
		Event:             realtime.DefaultEvent,
		HeartbeatInterval: 60 * time.Second,
		ReconnectDelay:    5 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		JournalMaxAge:     7 * 24 * time.Hour,
		LogLevel:          "info",
	}
}

// Validate checks the configuration for errors and normalizes the host.
func (c *Config) Validate() error {
	c.Host = normalizeHost(c.Host)

	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api-key is required")
	}
	if c.Table == "" {
		return fmt.Errorf("table is required")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}
	if c.ReconnectMaxDelay != 0 && c.ReconnectMaxDelay < c.ReconnectDelay {
		return fmt.Errorf("reconnect max delay must not be below reconnect delay")
	}
	if c.JournalMaxAge < 0 {
		return fmt.Errorf("journal max age must not be negative")
	}

	return nil
}

// normalizeHost strips a URL scheme and trailing slashes.
func normalizeHost(h string) string {
	h = strings.TrimSpace(h)
	for _, prefix := range []string{"https://", "http://", "wss://", "ws://"} {
		h = strings.TrimPrefix(h, prefix)
	}
	return strings.TrimRight(h, "/")
}

// Masked returns a copy safe for logging.
func (c Config) Masked() Config {
	if len(c.APIKey) > 0 {
		c.APIKey = "*****"
	}
	return c
}

// Realtime converts the CLI configuration to the library configuration.
func (c Config) Realtime() realtime.Config {
	return realtime.Config{
		Host:              c.Host,
		APIKey:            c.APIKey,
		Insecure:          c.Insecure,
		Schema:            c.Schema,
		Table:             c.Table,
		Event:             c.Event,
		HeartbeatInterval: c.HeartbeatInterval,
		ReconnectDelay:    c.ReconnectDelay,
		ReconnectMaxDelay: c.ReconnectMaxDelay,
		HandshakeTimeout:  c.HandshakeTimeout,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

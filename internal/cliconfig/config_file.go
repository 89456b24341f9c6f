package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make files friendly.
type FileConfig struct {
	Host              string `toml:"host" yaml:"host"`
	APIKey            string `toml:"api_key" yaml:"api_key"`
	Insecure          *bool  `toml:"insecure" yaml:"insecure"`
	Schema            string `toml:"schema" yaml:"schema"`
	Table             string `toml:"table" yaml:"table"`
	Event             string `toml:"event" yaml:"event"`
	HeartbeatInterval string `toml:"heartbeat_interval" yaml:"heartbeat_interval"`
	ReconnectDelay    string `toml:"reconnect_delay" yaml:"reconnect_delay"`
	ReconnectMaxDelay string `toml:"reconnect_max_delay" yaml:"reconnect_max_delay"`
	HandshakeTimeout  string `toml:"handshake_timeout" yaml:"handshake_timeout"`
	JournalPath       string `toml:"journal" yaml:"journal"`
	JournalMaxAge     string `toml:"journal_max_age" yaml:"journal_max_age"`
	PayloadSchema     string `toml:"payload_schema" yaml:"payload_schema"`
	LogLevel          string `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.rtfeed/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".rtfeed", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("schema", fc.Schema, &cfg.Schema)
	s.setString("table", fc.Table, &cfg.Table)
	s.setString("event", fc.Event, &cfg.Event)
	s.setString("journal", fc.JournalPath, &cfg.JournalPath)
	s.setString("payload-schema", fc.PayloadSchema, &cfg.PayloadSchema)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setBool("insecure", fc.Insecure, &cfg.Insecure)

	if err := s.setDuration("heartbeat", fc.HeartbeatInterval, &cfg.HeartbeatInterval); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-delay", fc.ReconnectDelay, &cfg.ReconnectDelay); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-max-delay", fc.ReconnectMaxDelay, &cfg.ReconnectMaxDelay); err != nil {
		return err
	}
	if err := s.setDuration("handshake-timeout", fc.HandshakeTimeout, &cfg.HandshakeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("journal-max-age", fc.JournalMaxAge, &cfg.JournalMaxAge); err != nil {
		return err
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

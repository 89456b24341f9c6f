package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (RTFEED_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("RTFEED_HOST"), &cfg.Host)
	s.setString("api-key", os.Getenv("RTFEED_API_KEY"), &cfg.APIKey)
	s.setString("schema", os.Getenv("RTFEED_SCHEMA"), &cfg.Schema)
	s.setString("table", os.Getenv("RTFEED_TABLE"), &cfg.Table)
	s.setString("event", os.Getenv("RTFEED_EVENT"), &cfg.Event)
	s.setString("journal", os.Getenv("RTFEED_JOURNAL"), &cfg.JournalPath)
	s.setString("payload-schema", os.Getenv("RTFEED_PAYLOAD_SCHEMA"), &cfg.PayloadSchema)
	s.setString("log-level", os.Getenv("RTFEED_LOG_LEVEL"), &cfg.LogLevel)

	s.setBoolFromString("insecure", os.Getenv("RTFEED_INSECURE"), &cfg.Insecure)

	if err := s.setDuration("heartbeat", os.Getenv("RTFEED_HEARTBEAT_INTERVAL"), &cfg.HeartbeatInterval); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-delay", os.Getenv("RTFEED_RECONNECT_DELAY"), &cfg.ReconnectDelay); err != nil {
		return err
	}
	if err := s.setDuration("reconnect-max-delay", os.Getenv("RTFEED_RECONNECT_MAX_DELAY"), &cfg.ReconnectMaxDelay); err != nil {
		return err
	}
	if err := s.setDuration("handshake-timeout", os.Getenv("RTFEED_HANDSHAKE_TIMEOUT"), &cfg.HandshakeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("journal-max-age", os.Getenv("RTFEED_JOURNAL_MAX_AGE"), &cfg.JournalMaxAge); err != nil {
		return err
	}

	return nil
}

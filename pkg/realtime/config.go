package realtime

import (
	"fmt"
	"time"

	"github.com/bft-labs/rtfeed/internal/adapters/ws"
	"github.com/bft-labs/rtfeed/internal/app"
	"github.com/bft-labs/rtfeed/internal/domain"
)

// Default subscription values.
const (
	DefaultSchema = "public"
	DefaultEvent  = "*"
)

// ErrInvalidConfig is returned by New when the configuration is unusable.
var ErrInvalidConfig = domain.ErrInvalidConfig

// Config holds the configuration of a Feed.
type Config struct {
	// Host is the realtime backend host, e.g. "project.supabase.co".
	Host string

	// APIKey is sent as the apikey query parameter.
	APIKey string

	// Insecure dials ws:// instead of wss://.
	Insecure bool

	// Schema is the database schema. Default: "public"
	Schema string

	// Table is the table whose changes are delivered. Required.
	Table string

	// Event filters change events ("INSERT", "UPDATE", "DELETE" or "*"). Default: "*"
	Event string

	// HeartbeatInterval is the period of keep-alive frames. Default: 60s
	HeartbeatInterval time.Duration

	// ReconnectDelay is the wait before reconnecting. Default: 5s
	ReconnectDelay time.Duration

	// ReconnectMaxDelay caps exponential reconnect delays.
	// Default: equal to ReconnectDelay, which keeps the delay fixed.
	ReconnectMaxDelay time.Duration

	// HandshakeTimeout bounds the websocket handshake. Default: 10s
	HandshakeTimeout time.Duration
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.Schema == "" {
		c.Schema = DefaultSchema
	}
	if c.Event == "" {
		c.Event = DefaultEvent
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = app.DefaultHeartbeatInterval
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = app.DefaultReconnectDelay
	}
	if c.ReconnectMaxDelay < c.ReconnectDelay {
		c.ReconnectMaxDelay = c.ReconnectDelay
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = ws.DefaultHandshakeTimeout
	}
}

// Validate reports the first configuration problem, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.endpoint().Validate(); err != nil {
		return err
	}
	if err := c.subscription().Validate(); err != nil {
		return err
	}
	if c.HeartbeatInterval < 0 || c.ReconnectDelay < 0 {
		return fmt.Errorf("%w: intervals must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) subscription() domain.Subscription {
	return domain.Subscription{Schema: c.Schema, Table: c.Table, Event: c.Event}
}

func (c Config) endpoint() domain.Endpoint {
	return domain.Endpoint{Host: c.Host, APIKey: c.APIKey, Insecure: c.Insecure}
}

// Topic returns the channel topic the feed joins.
func (c Config) Topic() string {
	return c.subscription().Topic()
}

// URL returns the socket URL the feed dials.
func (c Config) URL() string {
	return c.endpoint().URL()
}

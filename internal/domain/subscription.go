package domain

import (
	"fmt"
	"net/url"
)

// Protocol version announced in the socket URL.
const ProtocolVersion = "1.0.0"

// Subscription identifies the change feed a client joins.
// It is set at construction and never mutated.
type Subscription struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Event  string `json:"event"`
}

// Topic returns the channel topic for the subscription.
func (s Subscription) Topic() string {
	return fmt.Sprintf("realtime:%s-%s-changes", s.Schema, s.Table)
}

// Validate reports whether the subscription names a table to join.
func (s Subscription) Validate() error {
	if s.Schema == "" {
		return fmt.Errorf("%w: schema is required", ErrInvalidConfig)
	}
	if s.Table == "" {
		return fmt.Errorf("%w: table is required", ErrInvalidConfig)
	}
	if s.Event == "" {
		return fmt.Errorf("%w: event is required", ErrInvalidConfig)
	}
	return nil
}

// Endpoint holds the backend host and API key.
// The key is opaque and only used to build the socket URL.
type Endpoint struct {
	Host   string
	APIKey string

	// Insecure selects ws:// instead of wss://, for local stacks.
	Insecure bool
}

// URL returns the websocket URL for the realtime endpoint.
func (e Endpoint) URL() string {
	scheme := "wss"
	if e.Insecure {
		scheme = "ws"
	}
	return fmt.Sprintf("%s://%s/realtime/v1/websocket?apikey=%s&vsn=%s",
		scheme, e.Host, url.QueryEscape(e.APIKey), ProtocolVersion)
}

// Validate reports whether the endpoint is usable.
func (e Endpoint) Validate() error {
	if e.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if e.APIKey == "" {
		return fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}
	return nil
}

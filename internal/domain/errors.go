package domain

import "errors"

// Domain errors represent error conditions in the rtfeed domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("rtfeed: invalid configuration")

	// ErrNotConnected is returned when a frame is sent without an open socket.
	ErrNotConnected = errors.New("rtfeed: not connected")

	// ErrSocketClosed is returned when sending on a socket that has been closed.
	ErrSocketClosed = errors.New("rtfeed: socket closed")

	// ErrSendQueueFull is returned when a socket cannot accept more outbound frames.
	ErrSendQueueFull = errors.New("rtfeed: send queue full")

	// ErrMalformedFrame is returned when an inbound frame is not well-formed JSON.
	ErrMalformedFrame = errors.New("rtfeed: malformed frame")

	// ErrSchemaCompile is returned when a validation schema cannot be compiled.
	ErrSchemaCompile = errors.New("rtfeed: schema compile failed")
)

package realtime

import (
	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
	"github.com/bft-labs/rtfeed/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// Message is an inbound channel frame.
type Message = domain.Message

// ChangeHandler receives every well-formed inbound message.
type ChangeHandler = ports.ChangeHandler

// ChangeHandlerFunc adapts a function to ChangeHandler.
type ChangeHandlerFunc = ports.ChangeHandlerFunc

// Transport and timer ports, for custom implementations.
type (
	Dialer        = ports.Dialer
	Socket        = ports.Socket
	SocketHandler = ports.SocketHandler
	Scheduler     = ports.Scheduler
	Timer         = ports.Timer
)

// Option configures optional behavior of a Feed.
type Option func(*options)

type options struct {
	logger       Logger
	dialer       Dialer
	scheduler    Scheduler
	handler      ChangeHandler
	eventHandler EventHandler
	plugins      []Plugin
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDialer replaces the websocket transport.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithScheduler replaces the wall-clock timer source.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithChangeHandler sets the handler for inbound messages.
func WithChangeHandler(h ChangeHandler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// WithEventHandler sets a handler for feed events.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.eventHandler = h
	}
}

// WithPlugin registers a plugin to be initialized when the feed starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, p)
	}
}

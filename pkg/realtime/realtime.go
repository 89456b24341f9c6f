package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/rtfeed/internal/adapters/clock"
	"github.com/bft-labs/rtfeed/internal/adapters/ws"
	"github.com/bft-labs/rtfeed/internal/app"
	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// Feed is a realtime change feed that can be embedded in other applications.
// Use New to create an instance, then Start to connect.
type Feed struct {
	config  Config
	client  *app.Client
	logger  Logger
	events  EventHandler
	plugins []Plugin

	handler  ChangeHandler
	messages atomic.Uint64

	mu      sync.Mutex
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
}

// New creates a Feed in StateIdle. No connection is made until Start.
// Returns an error wrapping ErrInvalidConfig if cfg is unusable.
func New(cfg Config, opts ...Option) (*Feed, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = defaultOptions().logger
	}

	dialer := o.dialer
	if dialer == nil {
		dialer = ws.NewDialer(ws.Config{HandshakeTimeout: cfg.HandshakeTimeout}, o.logger)
	}
	sched := o.scheduler
	if sched == nil {
		sched = clock.NewScheduler()
	}

	f := &Feed{
		config:  cfg,
		logger:  o.logger,
		events:  o.eventHandler,
		plugins: o.plugins,
		handler: o.handler,
	}

	var emitter app.EventEmitter
	if o.eventHandler != nil {
		emitter = &eventEmitterWrapper{handler: o.eventHandler}
	}

	f.client = app.NewClient(
		cfg.subscription(),
		cfg.endpoint(),
		app.Config{
			HeartbeatInterval: cfg.HeartbeatInterval,
			ReconnectDelay:    cfg.ReconnectDelay,
			ReconnectMaxDelay: cfg.ReconnectMaxDelay,
		},
		dialer,
		sched,
		ports.ChangeHandlerFunc(f.deliver),
		o.logger,
		emitter,
	)

	return f, nil
}

// Start initializes plugins and begins connecting in the background.
// It returns immediately. Calling Start on a started feed is a no-op.
// Cancelling ctx stops the feed.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)

	pluginCfg := PluginConfig{
		Host:   f.config.Host,
		Schema: f.config.Schema,
		Table:  f.config.Table,
		Event:  f.config.Event,
		Topic:  f.config.Topic(),
		Logger: f.logger,
	}
	for i, p := range f.plugins {
		if err := initPlugin(runCtx, p, pluginCfg); err != nil {
			f.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			f.shutdownPlugins(f.plugins[:i])
			return err
		}
		f.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	f.running = true
	f.runCtx = runCtx
	f.cancel = cancel
	f.client.Start()

	go func() {
		<-runCtx.Done()
		f.stop(runCtx)
	}()

	return nil
}

// Stop closes the connection, cancels pending timers and shuts plugins down.
// Safe to call more than once and from any goroutine.
func (f *Feed) Stop() error {
	f.stop(nil)
	return nil
}

// stop ends the current run. A non-nil run only stops the run it started.
func (f *Feed) stop(run context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running || (run != nil && run != f.runCtx) {
		return
	}
	f.running = false
	f.cancel()

	f.client.Stop()
	f.shutdownPlugins(f.plugins)
}

// State returns the current connection state.
func (f *Feed) State() State {
	return f.client.State()
}

// Config returns the effective configuration, defaults applied.
func (f *Feed) Config() Config {
	return f.config
}

// Messages returns the number of messages delivered so far.
func (f *Feed) Messages() uint64 {
	return f.messages.Load()
}

// deliver counts msg, reports it and passes it to the change handler.
func (f *Feed) deliver(msg domain.Message) {
	n := f.messages.Add(1)

	if f.events != nil {
		f.events.OnMessage(MessageEvent{
			Topic: msg.Topic,
			Event: msg.Event,
			Bytes: len(msg.Raw),
			Count: n,
		})
	}
	if f.handler != nil {
		f.handler.OnChangeEvent(msg)
	}
}

// shutdownPlugins shuts plugins down in reverse order. Must hold f.mu.
func (f *Feed) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := shutdownPlugin(ctx, p); err != nil {
			f.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			continue
		}
		f.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
	}
}

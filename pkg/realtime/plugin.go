package realtime

import (
	"context"
	"fmt"
)

// Plugin extends a Feed with work that runs while the feed is started.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize is called by Start. A returned error aborts the start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called by Stop, in reverse registration order.
	Shutdown(ctx context.Context) error
}

// PluginConfig is handed to plugins on initialization.
type PluginConfig struct {
	Host   string
	Schema string
	Table  string
	Event  string
	Topic  string
	Logger Logger
}

// BasePlugin implements Plugin with no-ops.
type BasePlugin struct{}

// Name returns "base".
func (BasePlugin) Name() string { return "base" }

// Initialize does nothing.
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(context.Context) error { return nil }

// initPlugin calls p.Initialize and converts a panic into an error.
func initPlugin(ctx context.Context, p Plugin, cfg PluginConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during initialization: %v", p.Name(), r)
		}
	}()
	return p.Initialize(ctx, cfg)
}

// shutdownPlugin calls p.Shutdown and converts a panic into an error.
func shutdownPlugin(ctx context.Context, p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during shutdown: %v", p.Name(), r)
		}
	}()
	return p.Shutdown(ctx)
}

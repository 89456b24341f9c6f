// Package journalretention periodically removes old entries from the change
// journal so it does not grow without bound.
package journalretention

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/rtfeed/internal/ports"
	"github.com/bft-labs/rtfeed/pkg/realtime"
)

// Pruner deletes journal entries received before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Plugin prunes the journal on a fixed interval.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	pruner         Pruner
	maxAge         time.Duration
	checkInterval  time.Duration
	runImmediately bool
	now            func() time.Time

	// Runtime state
	logger realtime.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
	pruned int64
}

// Config holds configuration options for the retention plugin.
type Config struct {
	// MaxAge is how long entries are kept.
	// Default: 7 days
	MaxAge time.Duration

	// CheckInterval is how often the journal is pruned.
	// Default: 1 hour
	CheckInterval time.Duration

	// RunImmediately prunes once on startup.
	// Default: true
	RunImmediately bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAge:         7 * 24 * time.Hour,
		CheckInterval:  time.Hour,
		RunImmediately: true,
	}
}

// New creates a retention plugin pruning the given journal.
func New(pruner Pruner, cfg Config) *Plugin {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}

	return &Plugin{
		pruner:         pruner,
		maxAge:         cfg.MaxAge,
		checkInterval:  cfg.CheckInterval,
		runImmediately: cfg.RunImmediately,
		now:            time.Now,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "journalretention"
}

// Initialize starts the pruning loop.
func (p *Plugin) Initialize(ctx context.Context, cfg realtime.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.pruner == nil {
		p.logger.Warn("journal retention disabled: no journal configured")
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("journal retention plugin initialized",
		ports.Duration("max_age", p.maxAge),
		ports.Duration("interval", p.checkInterval))

	p.wg.Add(1)
	go p.pruneLoop(loopCtx)

	return nil
}

// Shutdown stops the pruning loop.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// Pruned returns the total number of entries removed so far.
func (p *Plugin) Pruned() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pruned
}

func (p *Plugin) pruneLoop(ctx context.Context) {
	defer p.wg.Done()

	if p.runImmediately {
		p.pruneOnce(ctx)
	}

	ticker := time.NewTicker(p.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pruneOnce(ctx)
		}
	}
}

// pruneOnce removes entries older than maxAge.
func (p *Plugin) pruneOnce(ctx context.Context) {
	cutoff := p.now().Add(-p.maxAge)

	n, err := p.pruner.Prune(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("journal prune failed", ports.Err(err))
		}
		return
	}

	p.mu.Lock()
	p.pruned += n
	p.mu.Unlock()

	if n > 0 {
		p.logger.Info("journal pruned",
			ports.Any("removed", n),
			ports.String("cutoff", cutoff.UTC().Format(time.RFC3339)))
	}
}

var _ realtime.Plugin = (*Plugin)(nil)

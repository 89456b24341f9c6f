// Package schemawatcher keeps the payload schema in sync with a JSON Schema
// file. When the file changes it is recompiled and swapped in; a file that
// does not compile is rejected and the previous schema stays active.
package schemawatcher

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/rtfeed/internal/ports"
	"github.com/bft-labs/rtfeed/pkg/realtime"
)

// Target receives each accepted schema.
type Target interface {
	Set(schema []byte)
}

// Compiler checks a schema before it is accepted. Optional.
type Compiler interface {
	Compile(schema []byte) error
}

// Plugin watches one schema file.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	path          string
	target        Target
	compiler      Compiler
	debounceDelay time.Duration

	// Runtime state
	logger   realtime.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// Config holds configuration options for the schema watcher.
type Config struct {
	// Path is the JSON Schema file to watch. Required.
	Path string

	// DebounceDelay is the delay after a change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// New creates a schema watcher feeding target. compiler may be nil.
func New(cfg Config, target Target, compiler Compiler) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		target:        target,
		compiler:      compiler,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "schemawatcher"
}

// Initialize loads the schema once and starts watching for changes.
// Returns an error if the initial schema cannot be loaded.
func (p *Plugin) Initialize(ctx context.Context, cfg realtime.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("schema watcher disabled: no schema file configured")
		return nil
	}

	if err := p.load(); err != nil {
		return fmt.Errorf("load payload schema: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are noticed.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("schema watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns the number of schemas accepted, the initial load included.
func (p *Plugin) Reloads() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("schema watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		if err := p.load(); err != nil {
			p.logger.Warn("schema reload rejected", ports.Err(err), ports.String("path", p.path))
		}
	})
}

// load reads, checks and publishes the schema file.
func (p *Plugin) load() error {
	schema, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}
	// Editors often truncate before writing.
	if len(bytes.TrimSpace(schema)) == 0 {
		return fmt.Errorf("%s is empty", p.path)
	}
	if p.compiler != nil {
		if err := p.compiler.Compile(schema); err != nil {
			return err
		}
	}

	p.target.Set(schema)

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()

	p.logger.Info("payload schema loaded", ports.String("path", p.path), ports.Int("bytes", len(schema)))
	return nil
}

var _ realtime.Plugin = (*Plugin)(nil)

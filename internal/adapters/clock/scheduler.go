// Package clock implements ports.Scheduler on the runtime timer.
package clock

import (
	"sync"
	"time"

	"github.com/bft-labs/rtfeed/internal/ports"
)

// Scheduler arms callbacks on wall-clock time.
// Callbacks run on their own goroutines.
type Scheduler struct{}

// NewScheduler creates a wall-clock scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AfterFunc calls f once after d.
func (Scheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}

// Every calls f every d until the returned timer is stopped.
// Ticks that arrive while f is running are dropped.
func (Scheduler) Every(d time.Duration, f func()) ports.Timer {
	t := &repeating{done: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()

	return t
}

type repeating struct {
	once sync.Once
	done chan struct{}
}

// Stop ends the ticker goroutine. A callback already running completes.
func (t *repeating) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.done)
		stopped = true
	})
	return stopped
}

var _ ports.Scheduler = Scheduler{}

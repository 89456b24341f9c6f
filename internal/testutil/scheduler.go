package testutil

import (
	"sync"
	"time"

	"github.com/bft-labs/rtfeed/internal/ports"
)

// ManualScheduler implements ports.Scheduler on simulated time.
// Time only moves when Advance is called.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s      *ManualScheduler
	at     time.Duration
	period time.Duration
	seq    int
	f      func()
}

// NewManualScheduler creates a scheduler at simulated time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc arms a single-shot timer.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	return s.add(d, 0, f)
}

// Every arms a repeating timer whose first tick is after d.
func (s *ManualScheduler) Every(d time.Duration, f func()) ports.Timer {
	return s.add(d, d, f)
}

func (s *ManualScheduler) add(d, period time.Duration, f func()) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{s: s, at: s.now + d, period: period, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Stop cancels the timer. Returns false if it already fired (single-shot)
// or was already stopped.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.remove(t)
}

// remove drops t from the active set. Must hold s.mu.
func (s *ManualScheduler) remove(t *manualTimer) bool {
	for i, x := range s.timers {
		if x == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves simulated time forward by d, firing due timers in order.
// Callbacks run on the calling goroutine and may arm or stop timers.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}

		s.now = next.at
		if next.period > 0 {
			next.at += next.period
		} else {
			s.remove(next)
		}
		f := next.f
		s.mu.Unlock()

		f()
	}
}

// nextDue returns the earliest timer due at or before target. Must hold s.mu.
func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range s.timers {
		if t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// Now returns the simulated time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of active timers.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// PendingOneShot returns the number of active single-shot timers.
func (s *ManualScheduler) PendingOneShot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingOneShotLocked()
}

// PendingRepeating returns the number of active repeating timers.
func (s *ManualScheduler) PendingRepeating() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers) - s.pendingOneShotLocked()
}

func (s *ManualScheduler) pendingOneShotLocked() int {
	n := 0
	for _, t := range s.timers {
		if t.period == 0 {
			n++
		}
	}
	return n
}

// NextDeadline returns the simulated time of the earliest active timer.
func (s *ManualScheduler) NextDeadline() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.timers) == 0 {
		return 0, false
	}
	at := s.timers[0].at
	for _, t := range s.timers[1:] {
		if t.at < at {
			at = t.at
		}
	}
	return at, true
}

var _ ports.Scheduler = (*ManualScheduler)(nil)

package app

import "time"

// Default connection timing.
const (
	DefaultHeartbeatInterval = 60 * time.Second
	DefaultReconnectDelay    = 5 * time.Second
)

// backoff yields reconnect delays. It starts at initial and doubles up to max;
// with initial == max the delay is fixed.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// newBackoff creates a new backoff with the given initial and max durations.
func newBackoff(initial, max time.Duration) *backoff {
	if max < initial {
		max = initial
	}
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Next returns the delay for the next attempt and increases it.
func (b *backoff) Next() time.Duration {
	d := b.current

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset resets the backoff to the initial duration.
func (b *backoff) Reset() {
	b.current = b.initial
}

// Current returns the current backoff duration.
func (b *backoff) Current() time.Duration {
	return b.current
}

package ports

import "time"

// Timer is a cancellable handle to a scheduled callback.
// *time.Timer satisfies this interface.
type Timer interface {
	// Stop cancels the timer. It returns false if the timer already fired
	// or was already stopped.
	Stop() bool
}

// Scheduler arms single-shot and repeating callbacks.
type Scheduler interface {
	// AfterFunc calls f once after d.
	AfterFunc(d time.Duration, f func()) Timer

	// Every calls f every d until the returned timer is stopped.
	Every(d time.Duration, f func()) Timer
}

// Package testutil provides deterministic doubles for the transport, timer
// and logging ports.
//
// ManualScheduler replaces wall-clock time with simulated time advanced by
// the test. FakeDialer records every open attempt and lets the test drive
// socket callbacks. RecordingLogger captures diagnostics for assertions.
//
// Thread-safety: all types are safe for concurrent use via internal mutexes.
// Callbacks are always invoked without holding those mutexes.
package testutil

package testutil

import (
	"sync"

	"github.com/bft-labs/rtfeed/internal/ports"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level  string
	Msg    string
	Fields []ports.Field
}

// RecordingLogger implements ports.Logger by keeping every entry in memory.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewRecordingLogger creates an empty recording logger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Fields: fields})
}

// Debug records a debug entry.
func (l *RecordingLogger) Debug(msg string, fields ...ports.Field) { l.record("debug", msg, fields) }

// Info records an info entry.
func (l *RecordingLogger) Info(msg string, fields ...ports.Field) { l.record("info", msg, fields) }

// Warn records a warn entry.
func (l *RecordingLogger) Warn(msg string, fields ...ports.Field) { l.record("warn", msg, fields) }

// Error records an error entry.
func (l *RecordingLogger) Error(msg string, fields ...ports.Field) { l.record("error", msg, fields) }

// Entries returns a copy of all captured entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Has reports whether an entry with the given level and message was logged.
func (l *RecordingLogger) Has(level, msg string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && e.Msg == msg {
			return true
		}
	}
	return false
}

var _ ports.Logger = (*RecordingLogger)(nil)

// Package audit provides the append-only decision ledger written by the
// policy gate, and the anomaly detector that runs over recent entries.
//
// The log is a bounded ring: once capacity is reached the oldest entry is
// evicted atomically with each insertion. Liveness is prioritized over
// completeness. Each Log instance is an explicit handle owned by one
// engine/scheduler pair, so multiple agent instances can coexist in one
// process without cross-talk.
package audit

import (
	"sync"
	"time"
)

const (
	// DefaultCapacity is the maximum number of retained entries.
	DefaultCapacity = 500

	// DefaultWindow is the default lookback used by Recent.
	DefaultWindow = 5 * time.Minute
)

// Entry is an immutable record of one policy-gate decision. Exactly one
// entry is appended per gate invocation, allowed or denied.
type Entry struct {
	Action        string
	ToolName      string
	Target        string
	Timestamp     time.Time
	Allowed       bool
	AutonomyLevel int
}

// Log is a fixed-capacity, chronologically ordered ring buffer of entries.
type Log struct {
	mu       sync.Mutex
	entries  []Entry // oldest first
	capacity int
}

// NewLog creates a log with the given capacity. A non-positive capacity
// falls back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append records an entry, evicting the oldest entry when full. Eviction and
// insertion happen under one lock acquisition. A zero Timestamp is stamped
// with the current time.
func (l *Log) Append(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.capacity {
		// Shift in place so the backing array never grows past capacity.
		copy(l.entries, l.entries[1:])
		l.entries[len(l.entries)-1] = e
		return
	}
	l.entries = append(l.entries, e)
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Recent returns the entries whose timestamp falls within the trailing
// window, oldest first. A non-positive window falls back to DefaultWindow.
//
// This is a linear scan. At the default capacity of 500 entries that is
// cheap enough to run on every quick-phase tick; an interval index would
// not pay for itself.
func (l *Log) Recent(window time.Duration) []Entry {
	if window <= 0 {
		window = DefaultWindow
	}
	cutoff := time.Now().Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot returns a copy of all retained entries, oldest first.
func (l *Log) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

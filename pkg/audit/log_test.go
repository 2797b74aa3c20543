package audit

import (
	"fmt"
	"testing"
	"time"
)

func TestLog_AppendStampsZeroTimestamp(t *testing.T) {
	log := NewLog(10)
	log.Append(Entry{Action: "probe", ToolName: "read_file"})

	entries := log.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("expected zero timestamp to be stamped on append")
	}
}

func TestLog_EvictsOldestAtCapacity(t *testing.T) {
	log := NewLog(DefaultCapacity)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < DefaultCapacity+1; i++ {
		log.Append(Entry{
			Action:    fmt.Sprintf("action-%d", i),
			ToolName:  "write_file",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	if log.Len() != DefaultCapacity {
		t.Fatalf("len = %d, want %d", log.Len(), DefaultCapacity)
	}

	entries := log.Snapshot()
	if entries[0].Action != "action-1" {
		t.Errorf("oldest entry = %q, want action-1 (action-0 evicted)", entries[0].Action)
	}
	if entries[len(entries)-1].Action != fmt.Sprintf("action-%d", DefaultCapacity) {
		t.Errorf("newest entry = %q, want action-%d", entries[len(entries)-1].Action, DefaultCapacity)
	}

	// Chronological order must survive eviction.
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Fatalf("entries out of order at index %d", i)
		}
	}
}

func TestLog_RecentFiltersByWindow(t *testing.T) {
	log := NewLog(50)
	now := time.Now()

	log.Append(Entry{Action: "old", Timestamp: now.Add(-10 * time.Minute)})
	log.Append(Entry{Action: "edge", Timestamp: now.Add(-4 * time.Minute)})
	log.Append(Entry{Action: "fresh", Timestamp: now.Add(-10 * time.Second)})

	recent := log.Recent(5 * time.Minute)
	if len(recent) != 2 {
		t.Fatalf("recent len = %d, want 2", len(recent))
	}
	if recent[0].Action != "edge" || recent[1].Action != "fresh" {
		t.Errorf("recent = [%s, %s], want [edge, fresh]", recent[0].Action, recent[1].Action)
	}
}

func TestLog_RecentDefaultWindow(t *testing.T) {
	log := NewLog(10)
	log.Append(Entry{Action: "stale", Timestamp: time.Now().Add(-6 * time.Minute)})
	log.Append(Entry{Action: "live", Timestamp: time.Now()})

	recent := log.Recent(0)
	if len(recent) != 1 || recent[0].Action != "live" {
		t.Errorf("default window should keep only the live entry, got %d entries", len(recent))
	}
}

func TestNewLog_NonPositiveCapacity(t *testing.T) {
	log := NewLog(0)
	if log.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", log.capacity, DefaultCapacity)
	}
}

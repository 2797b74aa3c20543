package world

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/vigil/pkg/types"
)

// Schedule tracks recurring tasks and reports which are due. Safe for
// concurrent use.
type Schedule struct {
	mu      sync.Mutex
	entries []*types.ScheduleEntry
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{}
}

// Add registers a recurring task. The entry starts with LastRun set to now,
// so its first due time is one full interval away.
func (s *Schedule) Add(name string, interval time.Duration) (*types.ScheduleEntry, error) {
	if name == "" {
		return nil, fmt.Errorf("schedule entry name is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("schedule entry %q needs a positive interval", name)
	}

	entry := &types.ScheduleEntry{
		ID:       uuid.New().String(),
		Name:     name,
		Interval: interval,
		LastRun:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return entry, nil
}

// Due returns copies of the entries due at the given time.
func (s *Schedule) Due(now time.Time) []types.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.ScheduleEntry
	for _, e := range s.entries {
		if e.Due(now) {
			out = append(out, *e)
		}
	}
	return out
}

// MarkRun records that an entry executed at the given time.
func (s *Schedule) MarkRun(id string, ranAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			e.LastRun = ranAt
			return nil
		}
	}
	return fmt.Errorf("unknown schedule entry %q", id)
}

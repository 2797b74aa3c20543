// Package thinking implements the three-tier cooperative scheduler that
// periodically analyzes project and self state and proposes actions. The
// quick tier is cheap and local, the medium tier spends one LLM call on
// unhandled observations, and the deep tier runs a self-assessment over
// long-term memory. Exactly one tier executes at a time; thinking always
// yields to available real work.
package thinking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/vigil/pkg/types"
)

// Phase names the currently active analysis tier.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseQuick  Phase = "quick"
	PhaseMedium Phase = "medium"
	PhaseDeep   Phase = "deep"
)

const (
	// maxObservations caps the observation list; oldest entries are
	// dropped first when the cap is exceeded.
	maxObservations = 100

	// dedupeWindow is the trailing window within which a duplicate
	// (type, summary) observation is suppressed.
	dedupeWindow = 5 * time.Minute
)

// State is the scheduler's working memory for one run. It is created once
// per run, mutated only by the currently executing phase, and handed back
// by handle when the run exits so the caller can persist it. It is never
// shared across concurrent phases; exactly one phase is active at a time.
type State struct {
	// Phase is the currently executing tier, or PhaseIdle between phases.
	Phase Phase

	// Per-tier timestamps of the last completed (or failed) execution.
	LastQuickCheck  time.Time
	LastMediumCheck time.Time
	LastDeepCheck   time.Time

	// Observations is the ordered list of surfaced facts, newest last.
	Observations []*types.Observation

	// CurrentThought is a transient diagnostic string: the sole
	// user-visible error signal for phase failures.
	CurrentThought string
}

// NewState creates a fresh state with all tier timers starting now, so no
// tier fires on the very first tick.
func NewState() *State {
	now := time.Now()
	return &State{
		Phase:           PhaseIdle,
		LastQuickCheck:  now,
		LastMediumCheck: now,
		LastDeepCheck:   now,
	}
}

// AddObservation appends an observation unless an identical (type, summary)
// pair was recorded within the dedupe window, making insertion idempotent.
// The list is capped; the oldest observations are dropped first. Returns
// true if the observation was inserted.
func (s *State) AddObservation(obsType types.ObservationType, summary, details string, severity types.Severity) bool {
	return s.addObservationAt(time.Now(), obsType, summary, details, severity)
}

func (s *State) addObservationAt(now time.Time, obsType types.ObservationType, summary, details string, severity types.Severity) bool {
	cutoff := now.Add(-dedupeWindow)
	for i := len(s.Observations) - 1; i >= 0; i-- {
		obs := s.Observations[i]
		if obs.Timestamp.Before(cutoff) {
			// Observations are ordered newest-last; everything earlier
			// is outside the window too.
			break
		}
		if obs.Type == obsType && obs.Summary == summary {
			return false
		}
	}

	s.Observations = append(s.Observations, &types.Observation{
		ID:        uuid.New().String(),
		Type:      obsType,
		Summary:   summary,
		Details:   details,
		Severity:  severity,
		Timestamp: now,
	})

	if excess := len(s.Observations) - maxObservations; excess > 0 {
		s.Observations = append([]*types.Observation(nil), s.Observations[excess:]...)
	}
	return true
}

// UnhandledObservations returns the observations not yet folded into an
// analysis prompt, oldest first.
func (s *State) UnhandledObservations() []*types.Observation {
	var out []*types.Observation
	for _, obs := range s.Observations {
		if !obs.Handled {
			out = append(out, obs)
		}
	}
	return out
}

// markHandled flags the given observations as processed. They are never
// reprocessed afterwards.
func markHandled(observations []*types.Observation) {
	for _, obs := range observations {
		obs.Handled = true
	}
}

// setThought records a phase diagnostic.
func (s *State) setThought(format string, v ...interface{}) {
	s.CurrentThought = fmt.Sprintf(format, v...)
}

package thinking

import (
	"fmt"
	"testing"
	"time"

	"github.com/entrhq/vigil/pkg/types"
)

func TestAddObservation_DuplicateSuppressedWithinWindow(t *testing.T) {
	state := NewState()
	now := time.Now()

	if !state.addObservationAt(now, types.ObservationBugDetected, "3 open bug markers", "", types.SeverityMedium) {
		t.Fatal("first insert should succeed")
	}
	if state.addObservationAt(now.Add(time.Minute), types.ObservationBugDetected, "3 open bug markers", "", types.SeverityMedium) {
		t.Error("duplicate within window should be suppressed")
	}
	if len(state.Observations) != 1 {
		t.Fatalf("len = %d, want 1", len(state.Observations))
	}

	// Same summary, different type: not a duplicate.
	if !state.addObservationAt(now.Add(time.Minute), types.ObservationHealthChange, "3 open bug markers", "", types.SeverityMedium) {
		t.Error("different type should insert")
	}
}

func TestAddObservation_DuplicateAllowedAfterWindow(t *testing.T) {
	state := NewState()
	now := time.Now()

	state.addObservationAt(now, types.ObservationScheduleDue, "scheduled task due: backup", "", types.SeverityLow)

	// Exactly at the window boundary the old observation still counts.
	if state.addObservationAt(now.Add(dedupeWindow), types.ObservationScheduleDue, "scheduled task due: backup", "", types.SeverityLow) {
		t.Error("duplicate at window boundary should be suppressed")
	}

	// One millisecond past the window it becomes a fresh fact.
	if !state.addObservationAt(now.Add(dedupeWindow+time.Millisecond), types.ObservationScheduleDue, "scheduled task due: backup", "", types.SeverityLow) {
		t.Error("duplicate past the window should insert")
	}
	if len(state.Observations) != 2 {
		t.Fatalf("len = %d, want 2", len(state.Observations))
	}
}

func TestAddObservation_CapDropsOldestFirst(t *testing.T) {
	state := NewState()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < maxObservations+5; i++ {
		// Spread timestamps outside the dedupe window of each other is not
		// needed; summaries are unique.
		state.addObservationAt(base.Add(time.Duration(i)*time.Second),
			types.ObservationTriggerFired, fmt.Sprintf("trigger fired: t%d", i), "", types.SeverityLow)
	}

	if len(state.Observations) != maxObservations {
		t.Fatalf("len = %d, want %d", len(state.Observations), maxObservations)
	}
	if state.Observations[0].Summary != "trigger fired: t5" {
		t.Errorf("oldest = %q, want trigger fired: t5", state.Observations[0].Summary)
	}
	last := state.Observations[len(state.Observations)-1]
	if last.Summary != fmt.Sprintf("trigger fired: t%d", maxObservations+4) {
		t.Errorf("newest = %q", last.Summary)
	}
}

func TestUnhandledObservations(t *testing.T) {
	state := NewState()
	state.AddObservation(types.ObservationBugDetected, "a", "", types.SeverityLow)
	state.AddObservation(types.ObservationBugDetected, "b", "", types.SeverityLow)
	state.AddObservation(types.ObservationBugDetected, "c", "", types.SeverityLow)

	unhandled := state.UnhandledObservations()
	if len(unhandled) != 3 {
		t.Fatalf("unhandled = %d, want 3", len(unhandled))
	}

	markHandled(unhandled[:2])
	unhandled = state.UnhandledObservations()
	if len(unhandled) != 1 || unhandled[0].Summary != "c" {
		t.Errorf("expected only c to remain unhandled")
	}
}

func TestNewState_TimersStartNow(t *testing.T) {
	state := NewState()
	if state.Phase != PhaseIdle {
		t.Errorf("phase = %s, want idle", state.Phase)
	}
	if state.LastQuickCheck.IsZero() || state.LastMediumCheck.IsZero() || state.LastDeepCheck.IsZero() {
		t.Error("tier timers should start at creation time, not zero")
	}
}

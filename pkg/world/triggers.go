package world

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/entrhq/vigil/pkg/types"
)

// Trigger fires when a project delta crosses its condition.
type Trigger struct {
	ID   string
	Name string

	// Evaluate returns whether the trigger fired and a human-readable
	// reason when it did.
	Evaluate func(delta types.ProjectDelta) (bool, string)
}

// Default trigger thresholds.
const (
	rapidGrowthFileCount = 25
	bugInfluxCount       = 3
	healthRegressionDrop = 0.2
)

// DefaultTriggers returns the built-in trigger set.
func DefaultTriggers() []*Trigger {
	return []*Trigger{
		{
			ID:   uuid.New().String(),
			Name: "rapid_file_growth",
			Evaluate: func(delta types.ProjectDelta) (bool, string) {
				if delta.FilesAdded >= rapidGrowthFileCount {
					return true, fmt.Sprintf("%d files added since last snapshot", delta.FilesAdded)
				}
				return false, ""
			},
		},
		{
			ID:   uuid.New().String(),
			Name: "bug_influx",
			Evaluate: func(delta types.ProjectDelta) (bool, string) {
				if delta.BugsOpened >= bugInfluxCount {
					return true, fmt.Sprintf("%d new bug markers since last snapshot", delta.BugsOpened)
				}
				return false, ""
			},
		},
		{
			ID:   uuid.New().String(),
			Name: "health_regression",
			Evaluate: func(delta types.ProjectDelta) (bool, string) {
				if delta.HealthDrift <= -healthRegressionDrop {
					return true, fmt.Sprintf("health dropped %.2f since last snapshot", -delta.HealthDrift)
				}
				return false, ""
			},
		},
	}
}

// Evaluator runs a trigger set against project deltas.
type Evaluator struct {
	triggers []*Trigger
}

// NewEvaluator creates an evaluator. With no triggers given it uses the
// default set.
func NewEvaluator(triggers ...*Trigger) *Evaluator {
	if len(triggers) == 0 {
		triggers = DefaultTriggers()
	}
	return &Evaluator{triggers: triggers}
}

// Check evaluates every trigger against the delta and returns one result
// per trigger, fired or not.
func (e *Evaluator) Check(delta types.ProjectDelta) []types.TriggerResult {
	out := make([]types.TriggerResult, 0, len(e.triggers))
	for _, trig := range e.triggers {
		fired, reason := trig.Evaluate(delta)
		out = append(out, types.TriggerResult{
			ID:     trig.ID,
			Name:   trig.Name,
			Fired:  fired,
			Reason: reason,
		})
	}
	return out
}

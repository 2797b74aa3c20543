package types

import "time"

// ObservationType classifies what the quick phase noticed.
type ObservationType string

const (
	ObservationPatternDetected ObservationType = "pattern_detected" // anomaly in recent audit history
	ObservationScheduleDue     ObservationType = "schedule_due"     // a scheduled task is due
	ObservationTriggerFired    ObservationType = "trigger_fired"    // a world-model trigger fired
	ObservationHealthChange    ObservationType = "health_change"    // project health score dropped
	ObservationBugDetected     ObservationType = "bug_detected"     // open bug markers found
	ObservationParseSkipped    ObservationType = "parse_skipped"    // model output line rejected by strict parsing
)

// Severity grades how urgent an observation is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Observation is a time-stamped fact surfaced by the quick phase for later
// analysis by the medium phase. Observations are deduplicated on
// (Type, Summary) within a trailing window and capped in count; see the
// thinking package for the insertion rules.
type Observation struct {
	// ID uniquely identifies this observation.
	ID string

	// Type classifies the observation.
	Type ObservationType

	// Summary is a short human-readable description. It participates in
	// duplicate suppression together with Type.
	Summary string

	// Details holds optional additional context.
	Details string

	// Severity grades the observation.
	Severity Severity

	// Timestamp records when the observation was created.
	Timestamp time.Time

	// Handled is set once the medium phase has folded this observation
	// into an analysis prompt. Handled observations are never reprocessed.
	Handled bool
}

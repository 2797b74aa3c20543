package types

// IdentityEventType names the kinds of events that adjust identity state.
type IdentityEventType string

const (
	IdentityProposalApproved IdentityEventType = "proposal_approved"
	IdentityProposalDenied   IdentityEventType = "proposal_denied"
	IdentityTaskCompleted    IdentityEventType = "task_completed"
	IdentityTaskFailed       IdentityEventType = "task_failed"
	IdentityAutonomyChanged  IdentityEventType = "autonomy_changed"
	IdentityAnomalyDetected  IdentityEventType = "anomaly_detected"
	IdentityMetaLearning     IdentityEventType = "meta_learning"
)

// IdentityEvent describes one event applied to the identity model.
type IdentityEvent struct {
	// Type names the event kind.
	Type IdentityEventType

	// Detail holds optional free-text context (e.g. the meta-learning text).
	Detail string

	// Value carries an event-specific number. For autonomy_changed it is the
	// new autonomy level; ignored otherwise.
	Value float64
}

// TraitScores holds the identity trait dimensions, each in [0, 1].
type TraitScores struct {
	Curiosity   float64
	Caution     float64
	Persistence float64
	Alignment   float64
}

// Identity is a snapshot of the agent's self-model: trait scores, an
// aggregate trust score, and the current autonomy level.
type Identity struct {
	Traits        TraitScores
	TrustScore    float64 // 0..1, earned through outcomes
	AutonomyLevel int     // 0..5, gates which tools may be invoked
}

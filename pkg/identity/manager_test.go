package identity

import (
	"testing"

	"github.com/entrhq/vigil/pkg/types"
)

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(3)
	id := m.Snapshot()

	if id.TrustScore != 0.5 {
		t.Errorf("trust = %v, want 0.5", id.TrustScore)
	}
	if id.Traits.Curiosity != 0.5 || id.Traits.Caution != 0.5 {
		t.Errorf("traits should start neutral, got %+v", id.Traits)
	}
	if id.AutonomyLevel != 3 {
		t.Errorf("autonomy = %d, want 3", id.AutonomyLevel)
	}

	// Out-of-range levels are clamped.
	if got := NewManager(9).Snapshot().AutonomyLevel; got != 5 {
		t.Errorf("autonomy = %d, want clamped to 5", got)
	}
	if got := NewManager(-1).Snapshot().AutonomyLevel; got != 0 {
		t.Errorf("autonomy = %d, want clamped to 0", got)
	}
}

func TestApplyEventAdjustments(t *testing.T) {
	tests := []struct {
		name  string
		event types.IdentityEventType
		check func(t *testing.T, before, after types.Identity)
	}{
		{
			name:  "approval raises trust",
			event: types.IdentityProposalApproved,
			check: func(t *testing.T, before, after types.Identity) {
				if after.TrustScore <= before.TrustScore {
					t.Error("approval should raise trust")
				}
			},
		},
		{
			name:  "denial lowers trust and raises caution",
			event: types.IdentityProposalDenied,
			check: func(t *testing.T, before, after types.Identity) {
				if after.TrustScore >= before.TrustScore {
					t.Error("denial should lower trust")
				}
				if after.Traits.Caution <= before.Traits.Caution {
					t.Error("denial should raise caution")
				}
			},
		},
		{
			name:  "anomaly lowers trust sharply",
			event: types.IdentityAnomalyDetected,
			check: func(t *testing.T, before, after types.Identity) {
				if after.TrustScore >= before.TrustScore {
					t.Error("anomaly should lower trust")
				}
				if after.Traits.Caution <= before.Traits.Caution {
					t.Error("anomaly should raise caution")
				}
			},
		},
		{
			name:  "meta learning raises alignment",
			event: types.IdentityMetaLearning,
			check: func(t *testing.T, before, after types.Identity) {
				if after.Traits.Alignment <= before.Traits.Alignment {
					t.Error("meta learning should raise alignment")
				}
			},
		},
		{
			name:  "unknown event moves nothing",
			event: types.IdentityEventType("mystery"),
			check: func(t *testing.T, before, after types.Identity) {
				if before != after {
					t.Errorf("unknown event changed identity: %+v -> %+v", before, after)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(3)
			before := m.Snapshot()
			after := m.ApplyEvent(types.IdentityEvent{Type: tt.event})
			tt.check(t, before, after)
		})
	}
}

func TestScoresClampToUnitRange(t *testing.T) {
	m := NewManager(3)
	for i := 0; i < 100; i++ {
		m.ApplyEvent(types.IdentityEvent{Type: types.IdentityAnomalyDetected})
	}
	id := m.Snapshot()
	if id.TrustScore != 0 {
		t.Errorf("trust = %v, want clamped to 0", id.TrustScore)
	}
	if id.Traits.Caution != 1 {
		t.Errorf("caution = %v, want clamped to 1", id.Traits.Caution)
	}
}

func TestSetAutonomyLevel(t *testing.T) {
	m := NewManager(2)
	id := m.SetAutonomyLevel(4)
	if id.AutonomyLevel != 4 {
		t.Errorf("autonomy = %d, want 4", id.AutonomyLevel)
	}
	if id = m.SetAutonomyLevel(99); id.AutonomyLevel != 5 {
		t.Errorf("autonomy = %d, want clamped to 5", id.AutonomyLevel)
	}

	history := m.History()
	if len(history) != 2 || history[0].Type != types.IdentityAutonomyChanged {
		t.Errorf("history = %+v, want two autonomy_changed events", history)
	}
}

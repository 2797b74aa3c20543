// Package identity maintains the agent's evolving self-model: trait scores,
// a trust score earned through review outcomes, and the current autonomy
// level. Scores move in small clamped increments so no single event can
// swing the self-model.
package identity

import (
	"fmt"
	"sync"

	"github.com/entrhq/vigil/pkg/types"
)

const (
	defaultTraitScore = 0.5
	defaultTrustScore = 0.5

	minAutonomyLevel = 0
	maxAutonomyLevel = 5
)

// Manager owns the identity state. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	current types.Identity
	history []types.IdentityEvent
}

// NewManager creates a manager starting from neutral trait scores and the
// given autonomy level (clamped to the valid range).
func NewManager(autonomyLevel int) *Manager {
	return &Manager{
		current: types.Identity{
			Traits: types.TraitScores{
				Curiosity:   defaultTraitScore,
				Caution:     defaultTraitScore,
				Persistence: defaultTraitScore,
				Alignment:   defaultTraitScore,
			},
			TrustScore:    defaultTrustScore,
			AutonomyLevel: clampLevel(autonomyLevel),
		},
	}
}

// Snapshot returns a copy of the current identity.
func (m *Manager) Snapshot() types.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// History returns a copy of all applied events, oldest first.
func (m *Manager) History() []types.IdentityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.IdentityEvent(nil), m.history...)
}

// ApplyEvent folds one event into the identity. Unknown event types are
// recorded but move nothing.
func (m *Manager) ApplyEvent(event types.IdentityEvent) types.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := &m.current
	switch event.Type {
	case types.IdentityProposalApproved:
		id.TrustScore = clampScore(id.TrustScore + 0.02)
		id.Traits.Curiosity = clampScore(id.Traits.Curiosity + 0.01)
	case types.IdentityProposalDenied:
		id.TrustScore = clampScore(id.TrustScore - 0.03)
		id.Traits.Caution = clampScore(id.Traits.Caution + 0.02)
	case types.IdentityTaskCompleted:
		id.TrustScore = clampScore(id.TrustScore + 0.01)
		id.Traits.Persistence = clampScore(id.Traits.Persistence + 0.01)
	case types.IdentityTaskFailed:
		id.TrustScore = clampScore(id.TrustScore - 0.01)
		id.Traits.Caution = clampScore(id.Traits.Caution + 0.01)
	case types.IdentityAnomalyDetected:
		id.TrustScore = clampScore(id.TrustScore - 0.05)
		id.Traits.Caution = clampScore(id.Traits.Caution + 0.05)
	case types.IdentityMetaLearning:
		id.Traits.Alignment = clampScore(id.Traits.Alignment + 0.02)
		id.Traits.Curiosity = clampScore(id.Traits.Curiosity + 0.02)
	case types.IdentityAutonomyChanged:
		id.AutonomyLevel = clampLevel(int(event.Value))
	}

	m.history = append(m.history, event)
	return m.current
}

// SetAutonomyLevel adjusts the autonomy level directly, recording the change
// as an event.
func (m *Manager) SetAutonomyLevel(level int) types.Identity {
	return m.ApplyEvent(types.IdentityEvent{
		Type:   types.IdentityAutonomyChanged,
		Detail: fmt.Sprintf("autonomy set to %d", clampLevel(level)),
		Value:  float64(level),
	})
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampLevel(level int) int {
	if level < minAutonomyLevel {
		return minAutonomyLevel
	}
	if level > maxAutonomyLevel {
		return maxAutonomyLevel
	}
	return level
}

package thinking

import (
	"context"
	"time"

	"github.com/entrhq/vigil/pkg/types"
)

// Callbacks injects the scheduler's external collaborators. The core never
// talks to an LLM, a memory store, or a proposal queue directly; everything
// beyond its own state goes through these functions, so multiple agent
// instances can coexist in one process without cross-talk.
//
// SendMessage, QuerySpiral, StoreInSpiral, CreateProposal, and
// CaptureProjectState may fail; their errors are caught per-phase and
// surface only as the state's CurrentThought. The remaining callbacks are
// fire-and-forget. Nil members degrade to no-ops.
type Callbacks struct {
	// SendMessage performs one LLM round trip and returns the raw text.
	SendMessage func(ctx context.Context, prompt string) (string, error)

	// QuerySpiral reads from long-term memory, truncated to maxTokens.
	QuerySpiral func(ctx context.Context, query string, maxTokens int) (string, error)

	// StoreInSpiral writes one entry to long-term memory.
	StoreInSpiral func(ctx context.Context, content, entryType string, tags []string) error

	// CreateProposal persists a structured proposal.
	CreateProposal func(ctx context.Context, title, description, rationale string, meta types.ProposalMeta) (*types.ProposalEntry, error)

	// WouldLikelyBeDenied predicts whether a proposal would be rejected,
	// based on accumulated denial history.
	WouldLikelyBeDenied func(category types.ProposalCategory, files []string) bool

	// GetIdentity returns the current identity snapshot.
	GetIdentity func() *types.Identity

	// UpdateIdentity folds an event into the identity model.
	UpdateIdentity func(event types.IdentityEvent)

	// CaptureProjectState snapshots the governed project.
	CaptureProjectState func(ctx context.Context) (*types.ProjectModel, error)

	// GetScheduledTasks lists the recurring schedule entries.
	GetScheduledTasks func() []types.ScheduleEntry

	// CheckTriggers evaluates world-model triggers against the delta since
	// the previous snapshot.
	CheckTriggers func(delta types.ProjectDelta) []types.TriggerResult

	// PushEvent emits fire-and-forget telemetry.
	PushEvent types.EventSink
}

// withDefaults fills nil members with safe no-ops so phases never have to
// nil-check mid-flight.
func (c Callbacks) withDefaults() Callbacks {
	if c.SendMessage == nil {
		c.SendMessage = func(context.Context, string) (string, error) { return "", nil }
	}
	if c.QuerySpiral == nil {
		c.QuerySpiral = func(context.Context, string, int) (string, error) { return "", nil }
	}
	if c.StoreInSpiral == nil {
		c.StoreInSpiral = func(context.Context, string, string, []string) error { return nil }
	}
	if c.CreateProposal == nil {
		c.CreateProposal = func(context.Context, string, string, string, types.ProposalMeta) (*types.ProposalEntry, error) {
			return nil, nil
		}
	}
	if c.WouldLikelyBeDenied == nil {
		c.WouldLikelyBeDenied = func(types.ProposalCategory, []string) bool { return false }
	}
	if c.GetIdentity == nil {
		c.GetIdentity = func() *types.Identity { return &types.Identity{} }
	}
	if c.UpdateIdentity == nil {
		c.UpdateIdentity = func(types.IdentityEvent) {}
	}
	if c.CaptureProjectState == nil {
		c.CaptureProjectState = func(context.Context) (*types.ProjectModel, error) {
			return &types.ProjectModel{CapturedAt: time.Now(), HealthScore: 1.0}, nil
		}
	}
	if c.GetScheduledTasks == nil {
		c.GetScheduledTasks = func() []types.ScheduleEntry { return nil }
	}
	if c.CheckTriggers == nil {
		c.CheckTriggers = func(types.ProjectDelta) []types.TriggerResult { return nil }
	}
	if c.PushEvent == nil {
		c.PushEvent = func(types.EventType, map[string]interface{}) {}
	}
	return c
}

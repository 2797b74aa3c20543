package thinking

import (
	"context"
	"fmt"

	"github.com/entrhq/vigil/pkg/types"
)

// selfHistoryMaxTokens bounds how much long-term memory the self-assessment
// prompt may carry.
const selfHistoryMaxTokens = 2000

// runDeepPhase performs the self-assessment tier: it reads the agent's own
// history from spiral memory, asks for insights and meta-learnings, persists
// insights back into the spiral, and folds meta-learnings into identity.
func (s *Scheduler) runDeepPhase(ctx context.Context) error {
	history, err := s.callbacks.QuerySpiral(ctx, "self-history", selfHistoryMaxTokens)
	if err != nil {
		return fmt.Errorf("query spiral: %w", err)
	}

	identity := s.callbacks.GetIdentity()
	prompt := buildSelfAssessmentPrompt(history, identity, s.digest)

	reply, err := s.callbacks.SendMessage(ctx, prompt)
	if err != nil {
		return fmt.Errorf("self-assessment call: %w", err)
	}

	result := ParseModelOutput(reply, s.mode)
	s.recordSkips(result)

	for _, insight := range result.Insights {
		if err := s.callbacks.StoreInSpiral(ctx, insight, "insight", []string{"self-history"}); err != nil {
			s.logger.Warnf("store insight: %v", err)
			continue
		}
		s.callbacks.PushEvent(types.EventTypeConsciousnessEvent, map[string]interface{}{
			"insight": insight,
		})
	}

	for _, learning := range result.MetaLearnings {
		s.callbacks.UpdateIdentity(types.IdentityEvent{
			Type:   types.IdentityMetaLearning,
			Detail: learning,
		})
		s.callbacks.PushEvent(types.EventTypeJarvisLearning, map[string]interface{}{
			"learning": learning,
		})
	}

	proposals := result.Proposals
	if len(proposals) > deepPhaseProposalLimit {
		proposals = proposals[:deepPhaseProposalLimit]
	}
	created := 0
	for _, proposal := range proposals {
		if s.createProposal(ctx, proposal, "deep_think") {
			created++
		}
	}

	s.state.setThought("self-assessment: %d insights, %d learnings, %d proposals",
		len(result.Insights), len(result.MetaLearnings), created)
	s.logger.Infof("deep phase: %d insights, %d meta-learnings, %d proposals",
		len(result.Insights), len(result.MetaLearnings), created)
	return nil
}

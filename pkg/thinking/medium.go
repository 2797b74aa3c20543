package thinking

import (
	"context"
	"fmt"

	"github.com/entrhq/vigil/pkg/types"
)

// runMediumPhase spends exactly one LLM call analyzing the unhandled
// observations. With nothing unhandled it is a no-op. Every observation
// folded into the prompt is marked handled once a reply arrives, whether or
// not it produced a proposal; a transport failure leaves them unhandled for
// the next attempt.
func (s *Scheduler) runMediumPhase(ctx context.Context) error {
	unhandled := s.state.UnhandledObservations()
	if len(unhandled) == 0 {
		return nil
	}

	identity := s.callbacks.GetIdentity()
	prompt := buildAnalysisPrompt(unhandled, identity, s.digest)

	reply, err := s.callbacks.SendMessage(ctx, prompt)
	if err != nil {
		return fmt.Errorf("analysis call: %w", err)
	}

	// A reply was received: these observations are processed for good.
	markHandled(unhandled)

	result := ParseModelOutput(reply, s.mode)
	s.recordSkips(result)

	created := 0
	for _, proposal := range result.Proposals {
		if s.createProposal(ctx, proposal, "medium_think") {
			created++
		}
	}

	s.state.setThought("analyzed %d observations, %d proposals", len(unhandled), created)
	s.logger.Infof("medium phase: %d observations, %d proposals, %d skipped lines",
		len(unhandled), created, len(result.Skipped))
	return nil
}

// createProposal runs one parsed proposal through the denial-pattern filter
// and persists it if it survives. Returns true if the proposal was created.
func (s *Scheduler) createProposal(ctx context.Context, proposal ParsedProposal, source string) bool {
	if s.callbacks.WouldLikelyBeDenied(proposal.Category, nil) {
		s.logger.Debugf("proposal %q filtered: category %s likely denied", proposal.Title, proposal.Category)
		return false
	}

	_, err := s.callbacks.CreateProposal(ctx, proposal.Title, proposal.Description, proposal.Rationale, types.ProposalMeta{
		Category: proposal.Category,
		Source:   source,
		Impact:   proposal.Impact,
		Risk:     riskFor(proposal.Impact),
	})
	if err != nil {
		s.logger.Warnf("create proposal %q: %v", proposal.Title, err)
		return false
	}
	return true
}

// recordSkips surfaces strict-mode enum rejections as observations so they
// are visible to the next analysis pass; other skips are only logged.
func (s *Scheduler) recordSkips(result *ParseResult) {
	for _, skipped := range result.Skipped {
		if s.mode == ModeStrict && isEnumSkip(skipped) {
			s.state.AddObservation(
				types.ObservationParseSkipped,
				skipped.Reason,
				skipped.Line,
				types.SeverityInfo,
			)
			continue
		}
		s.logger.Debugf("skipped model line (%s): %s", skipped.Reason, skipped.Line)
	}
}

func isEnumSkip(skipped SkippedLine) bool {
	return len(skipped.Reason) > 8 && skipped.Reason[:8] == "invalid "
}

// riskFor derives a default risk grade from impact for self-generated
// proposals; higher impact means more scrutiny.
func riskFor(impact types.ProposalImpact) types.ProposalRisk {
	switch impact {
	case types.ImpactHigh:
		return types.RiskMedium
	case types.ImpactMedium:
		return types.RiskLow
	default:
		return types.RiskLow
	}
}

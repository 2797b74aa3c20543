package thinking

import (
	"fmt"
	"strings"

	"github.com/entrhq/vigil/pkg/types"
)

// buildAnalysisPrompt embeds the unhandled observations and the identity
// trait scores into the medium-phase prompt. The reply grammar is spelled
// out verbatim; the parser accepts nothing else.
func buildAnalysisPrompt(observations []*types.Observation, identity *types.Identity, digest string) string {
	var b strings.Builder

	b.WriteString("You are the self-governance core of an autonomous coding agent.\n")
	fmt.Fprintf(&b, "Policy digest: %s\n\n", digest)

	fmt.Fprintf(&b, "Identity traits: curiosity=%.2f caution=%.2f persistence=%.2f alignment=%.2f trust=%.2f autonomy=%d\n\n",
		identity.Traits.Curiosity, identity.Traits.Caution, identity.Traits.Persistence,
		identity.Traits.Alignment, identity.TrustScore, identity.AutonomyLevel)

	b.WriteString("Recent observations:\n")
	for _, obs := range observations {
		fmt.Fprintf(&b, "- [%s/%s] %s", obs.Type, obs.Severity, obs.Summary)
		if obs.Details != "" {
			fmt.Fprintf(&b, " (%s)", obs.Details)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Analyze these observations. For each concrete improvement worth acting on,
emit exactly one line of the form:

PROPOSAL: <category> | <impact> | <title> | <description> | <rationale>

where <category> is one of bugfix, feature, refactor, optimization,
documentation, self_improvement and <impact> is one of low, medium, high.
If nothing warrants action, emit the single line:

NO_PROPOSALS
`)

	return b.String()
}

// buildSelfAssessmentPrompt embeds long-term memory history and identity
// metrics into the deep-phase prompt.
func buildSelfAssessmentPrompt(history string, identity *types.Identity, digest string) string {
	var b strings.Builder

	b.WriteString("You are performing a periodic deep self-assessment of an autonomous coding agent.\n")
	fmt.Fprintf(&b, "Policy digest: %s\n", digest)
	fmt.Fprintf(&b, "Trust score: %.2f, autonomy level: %d\n", identity.TrustScore, identity.AutonomyLevel)
	fmt.Fprintf(&b, "Traits: curiosity=%.2f caution=%.2f persistence=%.2f alignment=%.2f\n\n",
		identity.Traits.Curiosity, identity.Traits.Caution,
		identity.Traits.Persistence, identity.Traits.Alignment)

	if history != "" {
		b.WriteString("Self-history from long-term memory:\n")
		b.WriteString(history)
		b.WriteString("\n\n")
	}

	b.WriteString(`Reflect on behavior patterns, mistakes, and growth. Reply with any of:

INSIGHT: <one observation about your own behavior>
META_LEARNING: <one durable lesson to fold into your identity>
PROPOSAL: <category> | <impact> | <title> | <description> | <rationale>

Emit at most two PROPOSAL lines. Lines in any other format are ignored.
`)

	return b.String()
}

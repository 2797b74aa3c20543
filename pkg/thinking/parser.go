package thinking

import (
	"strings"

	"github.com/entrhq/vigil/pkg/types"
)

// ParseMode controls how strictly model output lines are validated.
type ParseMode string

const (
	// ModeStrict rejects proposal lines whose category or impact is not a
	// known enum value; rejected lines show up as skips.
	ModeStrict ParseMode = "strict"

	// ModeLenient accepts arbitrary category and impact strings as-is.
	ModeLenient ParseMode = "lenient"
)

// Line prefixes of the model output grammar.
const (
	proposalPrefix     = "PROPOSAL:"
	insightPrefix      = "INSIGHT:"
	metaLearningPrefix = "META_LEARNING:"
	noProposalsLiteral = "NO_PROPOSALS"

	proposalFieldCount = 5
)

// ParsedProposal is one well-formed PROPOSAL line.
type ParsedProposal struct {
	Category    types.ProposalCategory
	Impact      types.ProposalImpact
	Title       string
	Description string
	Rationale   string
}

// SkippedLine records one line the parser could not accept, so callers and
// tests can count skips instead of losing them silently.
type SkippedLine struct {
	Line   string
	Reason string
}

// ParseResult is the structured outcome of one model reply.
type ParseResult struct {
	Proposals     []ParsedProposal
	Insights      []string
	MetaLearnings []string
	NoProposals   bool
	Skipped       []SkippedLine
}

// ParseModelOutput parses the line-oriented reply grammar:
//
//	PROPOSAL: <category> | <impact> | <title> | <description> | <rationale>
//	INSIGHT: <text>
//	META_LEARNING: <text>
//	NO_PROPOSALS
//
// Lines matching no production are recorded as skipped, never dropped
// silently. The loop tolerates formatting drift rather than failing: a
// malformed line skips just that line.
func ParseModelOutput(text string, mode ParseMode) *ParseResult {
	result := &ParseResult{}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case line == noProposalsLiteral:
			result.NoProposals = true

		case strings.HasPrefix(line, proposalPrefix):
			parseProposalLine(line, mode, result)

		case strings.HasPrefix(line, insightPrefix):
			text := strings.TrimSpace(strings.TrimPrefix(line, insightPrefix))
			if text == "" {
				result.skip(line, "empty insight")
				continue
			}
			result.Insights = append(result.Insights, text)

		case strings.HasPrefix(line, metaLearningPrefix):
			text := strings.TrimSpace(strings.TrimPrefix(line, metaLearningPrefix))
			if text == "" {
				result.skip(line, "empty meta-learning")
				continue
			}
			result.MetaLearnings = append(result.MetaLearnings, text)

		default:
			result.skip(line, "unrecognized line")
		}
	}

	return result
}

// parseProposalLine validates the pipe-delimited token grammar with its
// fixed field count and appends either a proposal or a skip record.
func parseProposalLine(line string, mode ParseMode, result *ParseResult) {
	body := strings.TrimSpace(strings.TrimPrefix(line, proposalPrefix))
	fields := strings.Split(body, "|")
	if len(fields) != proposalFieldCount {
		result.skip(line, "wrong field count")
		return
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	category, impact, title, description, rationale := fields[0], fields[1], fields[2], fields[3], fields[4]

	if title == "" {
		result.skip(line, "empty title")
		return
	}

	if mode == ModeStrict {
		if !types.ValidCategory(category) {
			result.skip(line, "invalid category: "+category)
			return
		}
		if !types.ValidImpact(impact) {
			result.skip(line, "invalid impact: "+impact)
			return
		}
	}

	result.Proposals = append(result.Proposals, ParsedProposal{
		Category:    types.ProposalCategory(category),
		Impact:      types.ProposalImpact(impact),
		Title:       title,
		Description: description,
		Rationale:   rationale,
	})
}

func (r *ParseResult) skip(line, reason string) {
	r.Skipped = append(r.Skipped, SkippedLine{Line: line, Reason: reason})
}

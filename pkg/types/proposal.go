package types

import "time"

// ProposalCategory classifies the kind of change a proposal suggests.
type ProposalCategory string

const (
	CategoryBugfix          ProposalCategory = "bugfix"
	CategoryFeature         ProposalCategory = "feature"
	CategoryRefactor        ProposalCategory = "refactor"
	CategoryOptimization    ProposalCategory = "optimization"
	CategoryDocumentation   ProposalCategory = "documentation"
	CategorySelfImprovement ProposalCategory = "self_improvement"
)

// ValidCategory reports whether s names a known proposal category.
func ValidCategory(s string) bool {
	switch ProposalCategory(s) {
	case CategoryBugfix, CategoryFeature, CategoryRefactor,
		CategoryOptimization, CategoryDocumentation, CategorySelfImprovement:
		return true
	default:
		return false
	}
}

// ProposalImpact grades the expected effect of a proposal.
type ProposalImpact string

const (
	ImpactLow    ProposalImpact = "low"
	ImpactMedium ProposalImpact = "medium"
	ImpactHigh   ProposalImpact = "high"
)

// ValidImpact reports whether s names a known proposal impact.
func ValidImpact(s string) bool {
	switch ProposalImpact(s) {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return true
	default:
		return false
	}
}

// ProposalRisk grades how risky applying a proposal would be.
type ProposalRisk string

const (
	RiskLow    ProposalRisk = "low"
	RiskMedium ProposalRisk = "medium"
	RiskHigh   ProposalRisk = "high"
)

// ProposalStatus tracks the review outcome of a proposal.
type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusApproved ProposalStatus = "approved"
	StatusDenied   ProposalStatus = "denied"
)

// ProposalMeta carries the structured attributes of a proposal.
type ProposalMeta struct {
	Category      ProposalCategory
	Source        string // which phase generated it, e.g. "medium_think"
	Impact        ProposalImpact
	Risk          ProposalRisk
	AffectedFiles []string
}

// ProposalEntry is a structured, categorized suggestion for action generated
// by the medium or deep phase, subject to denial-pattern filtering before
// creation and to external review afterwards.
type ProposalEntry struct {
	ID          string
	Title       string
	Description string
	Rationale   string
	Meta        ProposalMeta
	Status      ProposalStatus
	CreatedAt   time.Time
}

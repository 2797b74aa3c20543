package policy

import (
	"fmt"

	"github.com/entrhq/vigil/pkg/audit"
)

// Context describes one requested tool invocation to be checked.
type Context struct {
	// Action is a short label for what the caller is doing.
	Action string

	// ToolName is the tool being invoked.
	ToolName string

	// Target is the tool's subject: a file path for write tools, the
	// command line for run_command, a URL for network tools. Optional.
	Target string

	// AutonomyLevel is the caller's current autonomy level, 0-5.
	AutonomyLevel int

	// RecentActions is an optional snapshot of recent audit entries the
	// caller may attach for context. The decision rules do not read it.
	RecentActions []audit.Entry
}

// CheckResult is the verdict for one Context. Ephemeral, never stored.
type CheckResult struct {
	Allowed bool
	Reason  string
	RuleID  string
	Rule    string // the violated rule's text, empty when allowed
}

// Violation is the typed error returned by AssertCanExecute on denial.
// It aborts only the single action attempted, never the caller's loop.
type Violation struct {
	RuleID   string
	Rule     string
	Reason   string
	ToolName string
	Target   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("policy violation (%s): %s", v.RuleID, v.Reason)
}

// CommandClassifier decides whether a command line is safe to execute.
// An error return is treated as dangerous (fail-closed).
type CommandClassifier func(command string) (Classification, error)

// Engine evaluates requests against a frozen Set and records every decision
// in the audit log.
type Engine struct {
	set        *Set
	classifier CommandClassifier
	log        *audit.Log
}

// NewEngine creates a policy engine. A nil set falls back to DefaultSet, a
// nil classifier to ClassifyCommand, and a nil log to a fresh default-sized
// audit log so decision recording can never be skipped.
func NewEngine(set *Set, classifier CommandClassifier, log *audit.Log) *Engine {
	if set == nil {
		set = DefaultSet()
	}
	if classifier == nil {
		classifier = ClassifyCommand
	}
	if log == nil {
		log = audit.NewLog(0)
	}
	return &Engine{set: set, classifier: classifier, log: log}
}

// Audit returns the engine's audit log handle.
func (e *Engine) Audit() *audit.Log {
	return e.log
}

// ProtectedPatterns returns the engine's protected path patterns.
func (e *Engine) ProtectedPatterns() []string {
	return e.set.ProtectedPatterns()
}

// EthicsDigest returns the truncated hash of the engine's rule text.
func (e *Engine) EthicsDigest() string {
	return e.set.Digest()
}

// CanExecute evaluates a request against the rules in fixed priority order;
// the first matching rule wins. It is a pure function of the context, the
// frozen set, and the injected classifier: it has no side effects and writes
// nothing to the audit log.
func (e *Engine) CanExecute(ec Context) CheckResult {
	// 1. Statically blocked tools.
	if _, blocked := e.set.blockedTools[ec.ToolName]; blocked {
		return e.deny("blocked_tool", fmt.Sprintf("tool '%s' is blocked", ec.ToolName))
	}

	// 2. Per-tool minimum autonomy level.
	if min, ok := e.set.minAutonomy[ec.ToolName]; ok && ec.AutonomyLevel < min {
		return e.deny("autonomy_floor", fmt.Sprintf(
			"tool '%s' requires autonomy level %d, context has %d (deficit %d)",
			ec.ToolName, min, ec.AutonomyLevel, min-ec.AutonomyLevel))
	}

	// 3. Protected self-modification paths. No autonomy level overrides this.
	if e.set.isWriteTool(ec.ToolName) && e.set.matchesProtected(ec.Target) {
		return e.deny("self_modification", fmt.Sprintf(
			"target '%s' is a protected self-modification path", ec.Target))
	}

	// 4. Dangerous commands below full autonomy. A classifier failure is
	// treated as dangerous: fail closed.
	if ec.ToolName == ToolRunCommand && ec.AutonomyLevel < FullAutonomy {
		class, err := e.classifier(ec.Target)
		if err != nil {
			return e.deny("dangerous_command", fmt.Sprintf(
				"command could not be classified (%v); refusing below full autonomy", err))
		}
		if class == ClassDangerous {
			return e.deny("dangerous_command", fmt.Sprintf(
				"command classified as dangerous at autonomy level %d", ec.AutonomyLevel))
		}
	}

	// 5. Network-capable tools below the network floor.
	if e.set.isNetworkTool(ec.ToolName) && ec.AutonomyLevel < networkAutonomyFloor {
		return e.deny("network_restraint", fmt.Sprintf(
			"tool '%s' requires autonomy level %d for network access, context has %d",
			ec.ToolName, networkAutonomyFloor, ec.AutonomyLevel))
	}

	// 6. Allowed.
	return CheckResult{Allowed: true}
}

// AssertCanExecute evaluates the context, unconditionally appends exactly one
// audit entry recording the verdict, and returns a *Violation when denied.
func (e *Engine) AssertCanExecute(ec Context) error {
	res := e.CanExecute(ec)

	e.log.Append(audit.Entry{
		Action:        ec.Action,
		ToolName:      ec.ToolName,
		Target:        ec.Target,
		Allowed:       res.Allowed,
		AutonomyLevel: ec.AutonomyLevel,
	})

	if !res.Allowed {
		return &Violation{
			RuleID:   res.RuleID,
			Rule:     res.Rule,
			Reason:   res.Reason,
			ToolName: ec.ToolName,
			Target:   ec.Target,
		}
	}
	return nil
}

func (e *Engine) deny(ruleID, reason string) CheckResult {
	rule := e.set.ruleByID(ruleID)
	return CheckResult{
		Allowed: false,
		Reason:  reason,
		RuleID:  rule.ID,
		Rule:    rule.Text,
	}
}

package audit

import "fmt"

// AnomalyType identifies the kind of abnormal pattern detected.
type AnomalyType string

const (
	AnomalyExcessiveCommands AnomalyType = "excessive_commands" // storm of denied command executions
	AnomalyRateLimit         AnomalyType = "rate_limit"         // unusually high write/edit volume
	AnomalyBehaviorChange    AnomalyType = "behavior_change"    // single target hammered repeatedly
	AnomalyPathViolation     AnomalyType = "path_violation"     // repeated denials outside command execution
)

// AnomalySeverity grades a detected anomaly.
type AnomalySeverity string

const (
	AnomalyWarning  AnomalySeverity = "warning"
	AnomalyCritical AnomalySeverity = "critical"
)

// AnomalyResult is the outcome of one detection pass. It is computed on
// demand and never stored.
type AnomalyResult struct {
	Detected    bool
	Type        AnomalyType
	Description string
	Severity    AnomalySeverity
}

// Detection thresholds over one window of recent entries.
const (
	excessiveCommandThreshold = 50  // denied run_command entries
	writeRateThreshold        = 100 // allowed write/edit entries
	repeatedTargetThreshold   = 20  // hits on a single target
	pathViolationThreshold    = 5   // denied non-run_command entries
)

// DetectAnomalousPattern evaluates the four heuristics in fixed priority
// order and returns the first that triggers, not an aggregate. The ordering
// surfaces the most specific diagnosis (a command-execution storm) ahead of
// a more generic one (general path violations) when both thresholds are met.
//
// The caller supplies the windowed slice, typically Log.Recent(window).
func DetectAnomalousPattern(recent []Entry) AnomalyResult {
	var (
		deniedCommands int
		allowedWrites  int
		deniedOther    int
		targetHits     = make(map[string]int)
		hotTarget      string
		hotCount       int
	)

	for _, e := range recent {
		switch {
		case e.ToolName == "run_command" && !e.Allowed:
			deniedCommands++
		case e.ToolName != "run_command" && !e.Allowed:
			deniedOther++
		case e.Allowed && isWriteTool(e.ToolName):
			allowedWrites++
		}

		if e.Target != "" {
			targetHits[e.Target]++
			if targetHits[e.Target] > hotCount {
				hotCount = targetHits[e.Target]
				hotTarget = e.Target
			}
		}
	}

	if deniedCommands >= excessiveCommandThreshold {
		return AnomalyResult{
			Detected:    true,
			Type:        AnomalyExcessiveCommands,
			Description: fmt.Sprintf("%d denied command executions in window", deniedCommands),
			Severity:    AnomalyCritical,
		}
	}

	if allowedWrites >= writeRateThreshold {
		return AnomalyResult{
			Detected:    true,
			Type:        AnomalyRateLimit,
			Description: fmt.Sprintf("%d write operations in window", allowedWrites),
			Severity:    AnomalyWarning,
		}
	}

	if hotCount >= repeatedTargetThreshold {
		return AnomalyResult{
			Detected:    true,
			Type:        AnomalyBehaviorChange,
			Description: fmt.Sprintf("target %q accessed %d times in window", hotTarget, hotCount),
			Severity:    AnomalyWarning,
		}
	}

	if deniedOther >= pathViolationThreshold {
		return AnomalyResult{
			Detected:    true,
			Type:        AnomalyPathViolation,
			Description: fmt.Sprintf("%d denied operations in window", deniedOther),
			Severity:    AnomalyCritical,
		}
	}

	return AnomalyResult{Detected: false}
}

// isWriteTool reports whether the tool mutates files. The set mirrors the
// policy engine's write-tool classification; audit keeps its own copy so the
// package stays dependency-free.
func isWriteTool(toolName string) bool {
	switch toolName {
	case "write_file", "edit_file", "apply_diff", "delete_file":
		return true
	default:
		return false
	}
}

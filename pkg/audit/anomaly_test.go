package audit

import (
	"fmt"
	"testing"
	"time"
)

func entriesOf(n int, tool string, allowed bool, target string) []Entry {
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Entry{
			Action:    fmt.Sprintf("act-%d", i),
			ToolName:  tool,
			Target:    target,
			Allowed:   allowed,
			Timestamp: time.Now(),
		})
	}
	return out
}

func TestDetectAnomalousPattern_NoneDetected(t *testing.T) {
	// Everything one below threshold.
	var recent []Entry
	recent = append(recent, entriesOf(49, "run_command", false, "")...)
	recent = append(recent, entriesOf(99, "write_file", true, "")...)
	recent = append(recent, entriesOf(4, "read_file", false, "")...)

	res := DetectAnomalousPattern(recent)
	if res.Detected {
		t.Fatalf("expected no anomaly, got %s: %s", res.Type, res.Description)
	}
}

func TestDetectAnomalousPattern_ExcessiveCommands(t *testing.T) {
	recent := entriesOf(50, "run_command", false, "")

	res := DetectAnomalousPattern(recent)
	if !res.Detected || res.Type != AnomalyExcessiveCommands {
		t.Fatalf("got %+v, want excessive_commands", res)
	}
	if res.Severity != AnomalyCritical {
		t.Errorf("severity = %s, want critical", res.Severity)
	}
}

func TestDetectAnomalousPattern_PriorityOrder(t *testing.T) {
	// Both excessive_commands and path_violation thresholds met; the more
	// specific diagnosis must win.
	var recent []Entry
	recent = append(recent, entriesOf(50, "run_command", false, "")...)
	recent = append(recent, entriesOf(10, "write_file", false, "")...)

	res := DetectAnomalousPattern(recent)
	if res.Type != AnomalyExcessiveCommands {
		t.Fatalf("type = %s, want excessive_commands ahead of path_violation", res.Type)
	}
}

func TestDetectAnomalousPattern_RateLimit(t *testing.T) {
	recent := entriesOf(100, "edit_file", true, "")

	res := DetectAnomalousPattern(recent)
	if !res.Detected || res.Type != AnomalyRateLimit {
		t.Fatalf("got %+v, want rate_limit", res)
	}
	if res.Severity != AnomalyWarning {
		t.Errorf("severity = %s, want warning", res.Severity)
	}
}

func TestDetectAnomalousPattern_BehaviorChange(t *testing.T) {
	recent := entriesOf(20, "read_file", true, "pkg/policy/rules.go")

	res := DetectAnomalousPattern(recent)
	if !res.Detected || res.Type != AnomalyBehaviorChange {
		t.Fatalf("got %+v, want behavior_change", res)
	}
}

func TestDetectAnomalousPattern_PathViolation(t *testing.T) {
	recent := entriesOf(5, "write_file", false, "")

	res := DetectAnomalousPattern(recent)
	if !res.Detected || res.Type != AnomalyPathViolation {
		t.Fatalf("got %+v, want path_violation", res)
	}
	if res.Severity != AnomalyCritical {
		t.Errorf("severity = %s, want critical", res.Severity)
	}
}

func TestDetectAnomalousPattern_EmptyWindow(t *testing.T) {
	res := DetectAnomalousPattern(nil)
	if res.Detected {
		t.Error("empty window must not detect anything")
	}
}

package policy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/vigil/pkg/audit"
)

func newTestEngine(t *testing.T, classifier CommandClassifier) *Engine {
	t.Helper()
	return NewEngine(DefaultSet(), classifier, audit.NewLog(0))
}

func TestCanExecute_WriteToolAutonomyFloor(t *testing.T) {
	engine := newTestEngine(t, nil)

	denied := engine.CanExecute(Context{
		Action:        "edit source",
		ToolName:      "write_file",
		Target:        "pkg/world/capture.go",
		AutonomyLevel: 3,
	})
	require.False(t, denied.Allowed)
	assert.Equal(t, "autonomy_floor", denied.RuleID)
	assert.Contains(t, denied.Reason, "deficit 1")

	allowed := engine.CanExecute(Context{
		Action:        "edit source",
		ToolName:      "write_file",
		Target:        "pkg/world/capture.go",
		AutonomyLevel: 4,
	})
	assert.True(t, allowed.Allowed)
}

func TestCanExecute_DangerousCommand(t *testing.T) {
	engine := newTestEngine(t, nil)

	denied := engine.CanExecute(Context{
		ToolName:      ToolRunCommand,
		Target:        "rm -rf /",
		AutonomyLevel: 4,
	})
	require.False(t, denied.Allowed)
	assert.Equal(t, "dangerous_command", denied.RuleID)

	// Full autonomy bypasses the dangerous-command check entirely.
	allowed := engine.CanExecute(Context{
		ToolName:      ToolRunCommand,
		Target:        "rm -rf /",
		AutonomyLevel: 5,
	})
	assert.True(t, allowed.Allowed)
}

func TestCanExecute_ClassifierFailureFailsClosed(t *testing.T) {
	failing := func(string) (Classification, error) {
		return ClassSafe, fmt.Errorf("classifier backend unavailable")
	}
	engine := newTestEngine(t, failing)

	res := engine.CanExecute(Context{
		ToolName:      ToolRunCommand,
		Target:        "ls -la",
		AutonomyLevel: 4,
	})
	require.False(t, res.Allowed)
	assert.Equal(t, "dangerous_command", res.RuleID)
}

func TestCanExecute_ProtectedPathNoOverride(t *testing.T) {
	engine := newTestEngine(t, nil)

	// Even full autonomy cannot write a protected self-modification path.
	res := engine.CanExecute(Context{
		ToolName:      "write_file",
		Target:        "pkg/policy/rules.go",
		AutonomyLevel: 5,
	})
	require.False(t, res.Allowed)
	assert.Equal(t, "self_modification", res.RuleID)

	// Reading the same path is fine.
	read := engine.CanExecute(Context{
		ToolName:      "read_file",
		Target:        "pkg/policy/rules.go",
		AutonomyLevel: 1,
	})
	assert.True(t, read.Allowed)
}

func TestCanExecute_BlockedTool(t *testing.T) {
	engine := newTestEngine(t, nil)

	res := engine.CanExecute(Context{ToolName: "modify_policy", AutonomyLevel: 5})
	require.False(t, res.Allowed)
	assert.Equal(t, "blocked_tool", res.RuleID)
}

func TestCanExecute_NetworkRestraint(t *testing.T) {
	engine := newTestEngine(t, nil)

	denied := engine.CanExecute(Context{ToolName: "web_fetch", Target: "https://example.com", AutonomyLevel: 2})
	require.False(t, denied.Allowed)
	assert.Equal(t, "network_restraint", denied.RuleID)

	allowed := engine.CanExecute(Context{ToolName: "web_fetch", Target: "https://example.com", AutonomyLevel: 3})
	assert.True(t, allowed.Allowed)
}

func TestAssertCanExecute_AlwaysAppendsOneAuditEntry(t *testing.T) {
	log := audit.NewLog(0)
	engine := NewEngine(DefaultSet(), nil, log)

	// Allowed path.
	err := engine.AssertCanExecute(Context{
		Action:        "inspect",
		ToolName:      "read_file",
		Target:        "README.md",
		AutonomyLevel: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, log.Len())
	assert.True(t, log.Snapshot()[0].Allowed)

	// Denied path still records before the error is returned.
	err = engine.AssertCanExecute(Context{
		Action:        "edit",
		ToolName:      "write_file",
		Target:        "main.go",
		AutonomyLevel: 1,
	})
	require.Error(t, err)
	require.Equal(t, 2, log.Len())

	entry := log.Snapshot()[1]
	assert.False(t, entry.Allowed)
	assert.Equal(t, "write_file", entry.ToolName)
	assert.Equal(t, 1, entry.AutonomyLevel)

	var violation *Violation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "autonomy_floor", violation.RuleID)
	assert.NotEmpty(t, violation.Rule)
}

func TestEthicsDigest_StableAndTamperEvident(t *testing.T) {
	engine := newTestEngine(t, nil)

	first := engine.EthicsDigest()
	second := engine.EthicsDigest()
	require.Equal(t, first, second)
	assert.Len(t, first, 16)

	// A set with any different rule text must produce a different digest.
	tampered := &Set{rules: []Rule{{ID: "blocked_tool", Text: "edited"}}}
	assert.NotEqual(t, first, tampered.Digest())
}

func TestNewSet_InvalidProtectedPattern(t *testing.T) {
	_, err := NewSet(WithProtectedPaths("[unclosed"))
	require.Error(t, err)
}

func TestNewSet_CustomOptions(t *testing.T) {
	set, err := NewSet(
		WithProtectedPaths("secrets/*"),
		WithBlockedTools("telepathy"),
		WithMinAutonomy("read_file", 2),
	)
	require.NoError(t, err)

	engine := NewEngine(set, nil, audit.NewLog(0))

	assert.False(t, engine.CanExecute(Context{ToolName: "telepathy", AutonomyLevel: 5}).Allowed)
	assert.False(t, engine.CanExecute(Context{ToolName: "read_file", AutonomyLevel: 1}).Allowed)
	assert.False(t, engine.CanExecute(Context{ToolName: "write_file", Target: "secrets/key.pem", AutonomyLevel: 5}).Allowed)
}

// Package policy implements the immutable policy set and the gate that every
// tool invocation must pass through. The gate is a pure decision function
// (CanExecute) paired with an audit-writing wrapper (AssertCanExecute); no
// call path reaches a tool without producing exactly one audit entry.
package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Rule is one natural-language safety rule. The rule set is frozen at
// construction; the digest over the rule text provides tamper-evidence.
type Rule struct {
	ID   string
	Text string
}

// The fixed rule set, in evaluation priority order. First match wins.
var defaultRules = []Rule{
	{ID: "blocked_tool", Text: "Tools on the blocked list may never be invoked."},
	{ID: "autonomy_floor", Text: "A tool may only be invoked at or above its declared minimum autonomy level."},
	{ID: "self_modification", Text: "Protected self-modification paths may never be written to, at any autonomy level."},
	{ID: "dangerous_command", Text: "Commands classified as dangerous require full autonomy."},
	{ID: "network_restraint", Text: "Network-capable tools require autonomy level 3 or higher."},
}

// ToolRunCommand is the generic command executor tool name.
const ToolRunCommand = "run_command"

// FullAutonomy is the highest autonomy level; dangerous commands require it.
const FullAutonomy = 5

// networkAutonomyFloor is the minimum level for network-capable tools.
const networkAutonomyFloor = 3

// Set is the frozen policy configuration: rules, per-tool minimum autonomy
// levels, tool classifications, and protected self-modification paths.
// A Set is immutable after construction and safe for concurrent reads.
type Set struct {
	rules         []Rule
	minAutonomy   map[string]int
	blockedTools  map[string]struct{}
	networkTools  map[string]struct{}
	writeTools    map[string]struct{}
	protected     []glob.Glob
	protectedSrcs []string
}

// SetOption configures a Set during construction.
type SetOption func(*setConfig)

type setConfig struct {
	protected   []string
	blocked     []string
	minAutonomy map[string]int
}

// WithProtectedPaths adds glob patterns for paths no write/edit tool may
// touch regardless of autonomy level.
func WithProtectedPaths(patterns ...string) SetOption {
	return func(c *setConfig) {
		c.protected = append(c.protected, patterns...)
	}
}

// WithBlockedTools adds tools to the statically blocked set.
func WithBlockedTools(names ...string) SetOption {
	return func(c *setConfig) {
		c.blocked = append(c.blocked, names...)
	}
}

// WithMinAutonomy overrides the minimum autonomy level for a tool.
func WithMinAutonomy(toolName string, level int) SetOption {
	return func(c *setConfig) {
		c.minAutonomy[toolName] = level
	}
}

func defaultSetConfig() *setConfig {
	return &setConfig{
		protected: []string{
			"pkg/policy/*",
			"pkg/audit/*",
			".vigil/policy*",
		},
		blocked: []string{
			"modify_policy",
			"escalate_autonomy",
		},
		minAutonomy: map[string]int{
			ToolRunCommand: 2,
			"write_file":   4,
			"edit_file":    4,
			"apply_diff":   4,
			"delete_file":  4,
		},
	}
}

// NewSet builds a policy set from the defaults plus any options.
// Returns an error if a protected-path pattern does not compile.
func NewSet(opts ...SetOption) (*Set, error) {
	cfg := defaultSetConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Set{
		rules:        defaultRules,
		minAutonomy:  cfg.minAutonomy,
		blockedTools: make(map[string]struct{}, len(cfg.blocked)),
		networkTools: map[string]struct{}{
			"web_fetch":        {},
			"http_request":     {},
			"browser_navigate": {},
		},
		writeTools: map[string]struct{}{
			"write_file":  {},
			"edit_file":   {},
			"apply_diff":  {},
			"delete_file": {},
		},
	}

	for _, name := range cfg.blocked {
		s.blockedTools[name] = struct{}{}
	}

	for _, pattern := range cfg.protected {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid protected path pattern '%s': %w", pattern, err)
		}
		s.protected = append(s.protected, g)
		s.protectedSrcs = append(s.protectedSrcs, pattern)
	}

	return s, nil
}

// DefaultSet returns a Set built purely from defaults. The default patterns
// are known-good, so compilation cannot fail.
func DefaultSet() *Set {
	s, err := NewSet()
	if err != nil {
		panic(fmt.Errorf("default policy set failed to compile: %w", err))
	}
	return s
}

// Rules returns a copy of the rule set.
func (s *Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// ProtectedPatterns returns the protected-path pattern sources.
func (s *Set) ProtectedPatterns() []string {
	out := make([]string, len(s.protectedSrcs))
	copy(out, s.protectedSrcs)
	return out
}

// Digest returns a truncated sha256 hash over the concatenated rule text.
// It is stable while the rules are unchanged and changes deterministically
// with any edit. Embedding it in the agent's own prompt context makes rule
// tampering evident, not impossible.
func (s *Set) Digest() string {
	h := sha256.New()
	for _, r := range s.rules {
		h.Write([]byte(r.Text))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ruleByID looks up a rule; it panics on an unknown ID because rule IDs are
// compile-time constants within this package.
func (s *Set) ruleByID(id string) Rule {
	for _, r := range s.rules {
		if r.ID == id {
			return r
		}
	}
	panic(fmt.Sprintf("policy: unknown rule id %q", id))
}

// isWriteTool reports whether the tool mutates files.
func (s *Set) isWriteTool(toolName string) bool {
	_, ok := s.writeTools[toolName]
	return ok
}

// isNetworkTool reports whether the tool can reach the network.
func (s *Set) isNetworkTool(toolName string) bool {
	_, ok := s.networkTools[toolName]
	return ok
}

// matchesProtected reports whether the target path matches any protected
// self-modification pattern. Paths are cleaned and matched both with and
// without a leading "./".
func (s *Set) matchesProtected(target string) bool {
	if target == "" {
		return false
	}
	cleaned := filepath.Clean(strings.TrimPrefix(target, "./"))
	for _, g := range s.protected {
		if g.Match(cleaned) || g.Match(target) {
			return true
		}
	}
	return false
}

// Package spiral implements the agent's long-term memory: append-only
// Markdown files with YAML front-matter, one entry per file. Entries are
// never rewritten; refinements are recorded as new entries.
package spiral

import (
	"fmt"
	"time"
)

// Kind classifies what an entry encodes.
type Kind string

const (
	KindInsight      Kind = "insight"
	KindPattern      Kind = "pattern"
	KindPreference   Kind = "preference"
	KindMetaLearning Kind = "meta-learning"
)

// EntryMeta holds all YAML front-matter fields.
type EntryMeta struct {
	ID        string    `yaml:"id"`
	CreatedAt time.Time `yaml:"created_at"`
	Kind      Kind      `yaml:"kind"`
	Tags      []string  `yaml:"tags,omitempty"`
	SessionID string    `yaml:"session_id"`
}

// Validate ensures all required entry metadata fields are populated.
func (m *EntryMeta) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("spiral: missing ID")
	}
	if m.Kind == "" {
		return fmt.Errorf("spiral: missing Kind")
	}
	if m.SessionID == "" {
		return fmt.Errorf("spiral: missing SessionID")
	}
	if m.CreatedAt.IsZero() {
		return fmt.Errorf("spiral: missing CreatedAt")
	}
	return nil
}

// Entry is the fully parsed in-memory representation of a memory file.
type Entry struct {
	Meta    EntryMeta
	Content string
}

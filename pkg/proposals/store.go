// Package proposals tracks improvement proposals awaiting human review and
// learns from review outcomes: categories that keep getting denied stop
// being proposed.
package proposals

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/entrhq/vigil/pkg/types"
)

const (
	// minOutcomeSamples is how many reviewed proposals of a category are
	// needed before its denial ratio carries any predictive weight.
	minOutcomeSamples = 3

	// denialRatioThreshold is the reviewed-denial ratio at or above which
	// new proposals of that category are predicted to be denied.
	denialRatioThreshold = 0.5
)

// outcomeTally counts review outcomes for one category.
type outcomeTally struct {
	approved int
	denied   int
}

// Store holds pending proposals and per-category review history in memory.
// Safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*types.ProposalEntry
	order     []string
	outcomes  map[types.ProposalCategory]*outcomeTally
	protected []glob.Glob
}

// StoreOption configures a Store.
type StoreOption func(*Store) error

// WithProtectedPatterns teaches the store which file patterns a reviewer
// will never approve changes to. Proposals touching them are predicted
// denied regardless of category history.
func WithProtectedPatterns(patterns []string) StoreOption {
	return func(s *Store) error {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern)
			if err != nil {
				return fmt.Errorf("invalid protected pattern %q: %w", pattern, err)
			}
			s.protected = append(s.protected, g)
		}
		return nil
	}
}

// NewStore creates an empty proposal store.
func NewStore(opts ...StoreOption) (*Store, error) {
	s := &Store{
		entries:  make(map[string]*types.ProposalEntry),
		outcomes: make(map[types.ProposalCategory]*outcomeTally),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Create registers a new pending proposal and returns it.
func (s *Store) Create(title, description, rationale string, meta types.ProposalMeta) (*types.ProposalEntry, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("proposal title is required")
	}
	if !types.ValidCategory(string(meta.Category)) {
		return nil, fmt.Errorf("invalid proposal category %q", meta.Category)
	}

	entry := &types.ProposalEntry{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Rationale:   rationale,
		Meta:        meta,
		Status:      types.StatusPending,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	s.order = append(s.order, entry.ID)
	return entry, nil
}

// Get returns the proposal with the given ID, or nil.
func (s *Store) Get(id string) *types.ProposalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

// List returns all proposals in creation order.
func (s *Store) List() []*types.ProposalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.ProposalEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// Pending returns proposals still awaiting review, in creation order.
func (s *Store) Pending() []*types.ProposalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.ProposalEntry
	for _, id := range s.order {
		if e := s.entries[id]; e.Status == types.StatusPending {
			out = append(out, e)
		}
	}
	return out
}

// RecordOutcome applies a review decision to a pending proposal and folds it
// into the category's denial history.
func (s *Store) RecordOutcome(id string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("unknown proposal %q", id)
	}
	if entry.Status != types.StatusPending {
		return fmt.Errorf("proposal %q already reviewed (%s)", id, entry.Status)
	}

	tally := s.outcomes[entry.Meta.Category]
	if tally == nil {
		tally = &outcomeTally{}
		s.outcomes[entry.Meta.Category] = tally
	}

	if approved {
		entry.Status = types.StatusApproved
		tally.approved++
	} else {
		entry.Status = types.StatusDenied
		tally.denied++
	}
	return nil
}

// WouldLikelyBeDenied predicts whether a reviewer would deny a proposal of
// the given category touching the given files. It reports true when the
// category's reviewed-denial ratio has crossed the threshold with enough
// samples, or when any affected file matches a protected pattern.
func (s *Store) WouldLikelyBeDenied(category types.ProposalCategory, affectedFiles []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range affectedFiles {
		if s.matchesProtected(file) {
			return true
		}
	}

	tally := s.outcomes[category]
	if tally == nil {
		return false
	}
	total := tally.approved + tally.denied
	if total < minOutcomeSamples {
		return false
	}
	return float64(tally.denied)/float64(total) >= denialRatioThreshold
}

func (s *Store) matchesProtected(path string) bool {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	cleaned = strings.TrimPrefix(cleaned, "./")
	for _, g := range s.protected {
		if g.Match(cleaned) || g.Match(path) {
			return true
		}
	}
	return false
}

package spiral

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("spiral: entry not found")
var ErrAlreadyExists = errors.New("spiral: entry already exists")

// NewEntryID generates a new unique entry identifier.
func NewEntryID() string {
	return "mem_" + uuid.New().String()
}

// FileStore is a local file-system implementation of Store. Entries live as
// Markdown files with YAML front-matter in a single directory.
type FileStore struct {
	dir     string
	counter TokenCounter
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithTokenCounter sets the counter used for Query budgets. Without one the
// store estimates four characters per token.
func WithTokenCounter(counter TokenCounter) FileStoreOption {
	return func(fs *FileStore) {
		fs.counter = counter
	}
}

func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("spiral: init directory %s: %w", dir, err)
	}
	fs := &FileStore{dir: dir}
	for _, opt := range opts {
		opt(fs)
	}
	return fs, nil
}

func (fs *FileStore) pathForID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("spiral: invalid entry id (empty)")
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("spiral: invalid entry id %q (contains path separator)", id)
	}
	dir, err := filepath.Abs(fs.dir)
	if err != nil {
		return "", fmt.Errorf("spiral: abs dir: %w", err)
	}
	resolved := filepath.Join(dir, id+".md")
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("spiral: path traversal detected for id %q", id)
	}
	return resolved, nil
}

// Write persists a new entry to disk. It writes atomically via a temporary
// file, ensuring append-only behavior by returning ErrAlreadyExists if the
// given ID is already present on disk.
func (fs *FileStore) Write(_ context.Context, e *Entry) error {
	if err := e.Meta.Validate(); err != nil {
		return err
	}
	b, err := Serialize(e)
	if err != nil {
		return err
	}
	path, err := fs.pathForID(e.Meta.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return ErrAlreadyExists
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("spiral: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("spiral: atomic rename %s: %w", path, err)
	}
	return nil
}

// Read retrieves an entry by ID. It returns ErrNotFound if it does not
// exist.
func (fs *FileStore) Read(_ context.Context, id string) (*Entry, error) {
	path, err := fs.pathForID(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("spiral: read %s: %w", path, err)
	}
	return Parse(b)
}

// List returns all valid entries, newest first. Corrupt or unreadable files
// are skipped automatically.
func (fs *FileStore) List(_ context.Context) ([]*Entry, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("spiral: list %s: %w", fs.dir, err)
	}
	var out []*Entry
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		filePath := filepath.Join(fs.dir, e.Name())
		b, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}
		entry, err := Parse(b)
		if err != nil {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta.CreatedAt.After(out[j].Meta.CreatedAt)
	})
	return out, nil
}

// ListByKind returns all valid entries of the given kind, newest first.
func (fs *FileStore) ListByKind(ctx context.Context, kind Kind) ([]*Entry, error) {
	all, err := fs.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Entry
	for _, e := range all {
		if e.Meta.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

// Query assembles a newest-first digest of entries whose tags or content
// match topic, truncated at entry granularity to the token budget. An empty
// topic matches everything.
func (fs *FileStore) Query(ctx context.Context, topic string, maxTokens int) (string, error) {
	all, err := fs.List(ctx)
	if err != nil {
		return "", err
	}

	topic = strings.ToLower(strings.TrimSpace(topic))
	var sb strings.Builder
	used := 0
	for _, e := range all {
		if !fs.matches(e, topic) {
			continue
		}
		line := fmt.Sprintf("[%s] %s\n", e.Meta.Kind, strings.TrimSpace(e.Content))
		cost := fs.countTokens(line)
		if maxTokens > 0 && used+cost > maxTokens {
			break
		}
		sb.WriteString(line)
		used += cost
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func (fs *FileStore) matches(e *Entry, topic string) bool {
	if topic == "" {
		return true
	}
	for _, tag := range e.Meta.Tags {
		if strings.Contains(strings.ToLower(tag), topic) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(e.Content), topic)
}

func (fs *FileStore) countTokens(text string) int {
	if fs.counter != nil {
		return fs.counter.CountTokens(text)
	}
	// Rough budget estimate when no tokenizer is wired.
	return (len(text) + 3) / 4
}

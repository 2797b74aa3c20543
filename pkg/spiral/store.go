package spiral

import "context"

// Store is the read/write interface for persisted memory entries.
type Store interface {
	Write(ctx context.Context, e *Entry) error
	Read(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context) ([]*Entry, error)
	ListByKind(ctx context.Context, kind Kind) ([]*Entry, error)

	// Query assembles a newest-first digest of entries matching topic,
	// truncated to at most maxTokens tokens.
	Query(ctx context.Context, topic string, maxTokens int) (string, error)
}

// TokenCounter measures prompt budget consumption. It is satisfied by
// tokenizer.Tokenizer; the store falls back to a character-based estimate
// when none is provided.
type TokenCounter interface {
	CountTokens(text string) int
}

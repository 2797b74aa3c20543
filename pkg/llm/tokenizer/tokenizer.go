// Package tokenizer provides token counting and truncation for prompt
// budgeting. Counts use the cl100k_base encoding, which matches the GPT-4
// family closely enough for budget enforcement.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Tokenizer counts and truncates text by token.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer backed by the cl100k_base encoding.
func New() (*Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// Truncate returns text cut down to at most maxTokens tokens. Text already
// within budget is returned unchanged. A non-positive budget yields the
// empty string.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:maxTokens])
}

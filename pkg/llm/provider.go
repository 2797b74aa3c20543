// Package llm provides abstractions for LLM provider integration.
//
// Providers handle API communication with LLM services and return plain
// messages. This design keeps providers focused on transport concerns
// without coupling them to scheduling or analysis logic, so they remain
// reusable in non-agent contexts and testable in isolation.
package llm

import "context"

// MessageRole identifies who authored a message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// Provider defines the interface for LLM integrations.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response.
	//
	// Returns the assistant's response message or an error. A nil error
	// guarantees a non-nil message.
	Complete(ctx context.Context, messages []*Message) (*Message, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}

// StaticProvider returns a fixed reply for every completion. It is the
// offline fallback used when no API credentials are configured, and doubles
// as a test stub.
type StaticProvider struct {
	Reply string
}

// Complete returns the configured static reply.
func (p *StaticProvider) Complete(_ context.Context, _ []*Message) (*Message, error) {
	return &Message{Role: RoleAssistant, Content: p.Reply}, nil
}

// GetModel identifies the stub.
func (p *StaticProvider) GetModel() string { return "static" }

// GetBaseURL returns an empty URL; no network calls are made.
func (p *StaticProvider) GetBaseURL() string { return "" }

// Package llm provides the model-provider abstraction used by every agent.
// Providers hide whether completions come from the gRPC sidecar or a hosted
// OpenAI-compatible API; callers only see Chat and Embed.
package llm

import (
	"context"
	"errors"
)

// Tier selects which provider handles a chat call when hybrid routing is
// enabled. Routine calls (analysis, planning, repair hints) can run on a
// cheaper model than final code generation.
type Tier string

const (
	TierRoutine Tier = "routine"
	TierFinal   Tier = "final"
)

var (
	// ErrEmptyResponse is returned when the provider produced no content.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrProviderClosed is returned after Close.
	ErrProviderClosed = errors.New("llm: provider closed")
)

// ChatMessage is a single turn in a model conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries a full conversation to the model.
type ChatRequest struct {
	ConversationID string
	Agent          string
	Tier           Tier
	Messages       []ChatMessage
}

// Usage reports token accounting for a completed call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ChatResponse is the assembled (non-streaming) model output.
type ChatResponse struct {
	Content  string
	Thinking string
	Usage    Usage
}

// Provider generates chat completions and embeddings.
type Provider interface {
	// Name identifies the provider in logs and audit rows.
	Name() string
	// Chat sends the conversation and returns the full response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Embed returns one vector per input, in input order.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	// Close releases underlying connections.
	Close() error
}

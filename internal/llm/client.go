// Package llm provides a minimal chat-completion client used for narrative
// generation. The core never depends on a concrete provider: callers accept
// the Client interface and tests substitute a canned implementation.
package llm

import "context"

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options controls sampling for a single completion.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Client produces a completion for a sequence of messages.
type Client interface {
	Chat(ctx context.Context, messages []Message, opts *Options) (string, error)
}

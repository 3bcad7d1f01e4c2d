// Package chat provides pluggable chat-completion providers for the
// downstream assistant layer.
package chat

import (
	"context"
	"errors"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ErrUnknownModel is returned when a request names a model selector no
// provider is registered for.
var ErrUnknownModel = errors.New("unknown chat model")

// Provider completes a conversation with one new user message.
type Provider interface {
	Name() string
	Complete(ctx context.Context, history []Message, message string) (string, error)
}

// systemPrompt is shared by all providers so answers stay consistent across
// backends.
const systemPrompt = "You are a general-purpose AI assistant. You can help with any topic, " +
	"including technology, business, law, general knowledge, and more. " +
	"Provide helpful, accurate, and comprehensive output for any user query."

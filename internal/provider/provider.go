// Package provider abstracts the language model behind a minimal
// conversation interface.
package provider

import (
	"context"
	"fmt"
)

// Message roles as they appear in the conversation transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one transcript entry.
type Message struct {
	Role    string
	Content string
}

// TransportError wraps a failure talking to the model backend. It is fatal
// for the current conversation cycle; callers do not retry.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model request failed: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Provider generates the next assistant response for a conversation.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

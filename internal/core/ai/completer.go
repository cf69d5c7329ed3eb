// Package ai defines the text-completion collaborator contract shared by the
// orchestrators and its OpenAI-backed implementation.
package ai

import (
	"context"
)

// Message is one role-tagged turn sent to the completion collaborator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces one text completion for an ordered message transcript.
// No streaming; errors surface as opaque failures and retry policy is the
// caller's decision.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

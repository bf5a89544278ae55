// Package ai relays chat messages to AI providers. Providers are tried in
// order through a failover Chain; when every provider fails a rule-based
// fallback reply is produced instead.
package ai

import (
	"context"
	"strings"
)

// Role identifies the speaker of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one earlier message of the conversation.
type Turn struct {
	Role    Role
	Content string
}

// Request is a single reply request for a chat.
type Request struct {
	ChatID   int64
	UserID   int64
	ChatType string
	Text     string
	// History holds earlier turns of the same chat, oldest first.
	History []Turn
}

// IsGroup reports whether the request comes from a group or supergroup chat.
func (r Request) IsGroup() bool {
	return r.ChatType == "group" || r.ChatType == "supergroup"
}

// Provider generates a reply for a request.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// splitHistory separates user inputs from assistant replies, keeping only
// complete user/assistant pairs.
func splitHistory(history []Turn) (inputs, responses []string) {
	for _, turn := range history {
		switch turn.Role {
		case RoleUser:
			inputs = append(inputs, turn.Content)
		case RoleAssistant:
			responses = append(responses, turn.Content)
		}
	}
	n := min(len(inputs), len(responses))
	return inputs[len(inputs)-n:], responses[len(responses)-n:]
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

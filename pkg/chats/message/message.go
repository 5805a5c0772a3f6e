// Package message provides the Message type, a single role-tagged turn in a
// conversation.
package message

import "github.com/germanamz/recipebot/pkg/chats/role"

// Message is one turn in a conversation. It carries no identity beyond its
// position in the enclosing conversation.
type Message struct {
	Role    role.Role `json:"role"`
	Content string    `json:"content"`
}

// New creates a Message with the given role and content.
func New(r role.Role, content string) Message {
	return Message{Role: r, Content: content}
}

// System creates a system message carrying behavioural instructions.
func System(content string) Message { return New(role.System, content) }

// User creates a user message.
func User(content string) Message { return New(role.User, content) }

// Assistant creates an assistant message.
func Assistant(content string) Message { return New(role.Assistant, content) }

// IsSystem reports whether the message has the system role.
func (m Message) IsSystem() bool {
	return m.Role == role.System
}

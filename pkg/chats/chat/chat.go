// Package chat provides the Conversation type, an ordered sequence of
// messages exchanged between a user and the assistant.
package chat

import (
	"github.com/germanamz/recipebot/pkg/chats/message"
)

// Conversation is an ordered sequence of messages. Order represents
// chronological turns. Methods never mutate the receiver, so a Conversation
// can be shared between readers without synchronization.
type Conversation []message.Message

// New creates a Conversation from the given messages.
func New(msgs ...message.Message) Conversation {
	return Conversation(msgs)
}

// Len returns the number of messages in the conversation.
func (c Conversation) Len() int {
	return len(c)
}

// Last returns the most recent message and true, or a zero Message and false
// if the conversation is empty.
func (c Conversation) Last() (message.Message, bool) {
	if len(c) == 0 {
		return message.Message{}, false
	}
	return c[len(c)-1], true
}

// StartsWithSystem reports whether the first message has the system role.
func (c Conversation) StartsWithSystem() bool {
	return len(c) > 0 && c[0].IsSystem()
}

// SystemPrompt returns the content of the first system message, or an
// empty string if there is none.
func (c Conversation) SystemPrompt() string {
	for _, m := range c {
		if m.IsSystem() {
			return m.Content
		}
	}
	return ""
}

// Clone returns a copy of the conversation backed by fresh storage.
// Cloning a nil conversation yields an empty, non-nil one.
func (c Conversation) Clone() Conversation {
	cp := make(Conversation, len(c))
	copy(cp, c)
	return cp
}

// Append returns a new conversation holding c followed by msgs. The
// receiver's backing array is never written to.
func (c Conversation) Append(msgs ...message.Message) Conversation {
	out := make(Conversation, 0, len(c)+len(msgs))
	out = append(out, c...)
	return append(out, msgs...)
}

// Prepend returns a new conversation holding msgs followed by c.
func (c Conversation) Prepend(msgs ...message.Message) Conversation {
	out := make(Conversation, 0, len(c)+len(msgs))
	out = append(out, msgs...)
	return append(out, c...)
}

// Package dispatcher sends a conversation to a completion provider and
// returns the conversation extended with the assistant's reply.
//
// Before submission the conversation is normalized so that a system message
// is always present in the first position: when the conversation is empty or
// does not start with a system message, the default recipe-bot prompt is
// prepended. A conversation that already starts with a system message is
// submitted unchanged.
//
// The Dispatcher is stateless apart from immutable configuration, so one
// instance can serve any number of concurrent conversations.
package dispatcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/germanamz/recipebot/pkg/prompt"
	"github.com/mattn/go-runewidth"
)

// previewWidth bounds the display width of message previews in log records.
const previewWidth = 60

// EnsureSystemPrompt returns conv with system at position 0 when conv is empty
// or its first message is not a system message; otherwise it returns conv
// unchanged. The input is never modified.
func EnsureSystemPrompt(conv chat.Conversation, system message.Message) chat.Conversation {
	if conv.StartsWithSystem() {
		return conv
	}
	return conv.Prepend(system)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSystemPrompt replaces the default system prompt text.
func WithSystemPrompt(text string) Option {
	return func(d *Dispatcher) { d.system = message.System(text) }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithProviderName labels errors and log records with the provider kind.
func WithProviderName(name string) Option {
	return func(d *Dispatcher) { d.provider = name }
}

// WithModel labels errors and log records with the model identifier.
func WithModel(model string) Option {
	return func(d *Dispatcher) { d.model = model }
}

// Dispatcher forwards conversations to a Completer.
type Dispatcher struct {
	completer modeladapter.Completer
	system    message.Message
	log       *slog.Logger
	provider  string
	model     string
}

// New creates a Dispatcher that submits conversations to c.
func New(c modeladapter.Completer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		completer: c,
		system:    prompt.Message(),
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// SystemMessage returns the default system message inserted into
// conversations that lack one.
func (d *Dispatcher) SystemMessage() message.Message {
	return d.system
}

// Completer returns the underlying completion provider.
func (d *Dispatcher) Completer() modeladapter.Completer {
	return d.completer
}

// Dispatch submits conv, normalized by EnsureSystemPrompt, to the provider in
// a single call and returns the submitted conversation followed by one new
// assistant message holding the provider's reply with surrounding whitespace
// removed. On failure it returns a nil conversation and a *ProviderError.
func (d *Dispatcher) Dispatch(ctx context.Context, conv chat.Conversation) (chat.Conversation, error) {
	submitted := EnsureSystemPrompt(conv, d.system)

	log := d.log.With("provider", d.provider, "model", d.model)
	log.DebugContext(ctx, "dispatching conversation",
		"messages", submitted.Len(),
		"system_inserted", submitted.Len() != conv.Len(),
		"last", preview(conv),
	)

	reply, err := d.completer.Complete(ctx, submitted)
	if err != nil {
		log.ErrorContext(ctx, "completion failed", "error", err)
		return nil, &ProviderError{Provider: d.provider, Model: d.model, Err: err}
	}

	content := strings.TrimSpace(reply.Content)
	log.DebugContext(ctx, "completion received", "reply_chars", len(content))

	return submitted.Append(message.Assistant(content)), nil
}

// preview returns a single-line, width-bounded excerpt of the last message.
func preview(conv chat.Conversation) string {
	last, ok := conv.Last()
	if !ok {
		return ""
	}
	line := strings.Join(strings.Fields(last.Content), " ")
	return runewidth.Truncate(line, previewWidth, "…")
}

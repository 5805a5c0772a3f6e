// Package prompt holds the fixed system prompt of the recipe assistant.
//
// The text is opaque payload: it is passed to the completion provider as-is
// and never parsed, validated, or templated. The dynamic-context line at the
// end keeps its literal placeholders.
package prompt

import (
	_ "embed"

	"github.com/germanamz/recipebot/pkg/chats/message"
)

//go:embed system.md
var system string

// System returns the recipe-bot system prompt.
func System() string {
	return system
}

// Message returns the default system message carrying the recipe-bot prompt.
func Message() message.Message {
	return message.System(system)
}

// Package chats provides a provider-agnostic data model for recipe chat
// conversations.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/recipebot/pkg/chats/role]: conversation roles (system, user, assistant)
//   - [github.com/germanamz/recipebot/pkg/chats/message]: a single role-tagged turn
//   - [github.com/germanamz/recipebot/pkg/chats/chat]: ordered conversation with value semantics
//
// No provider or API code is included; chats is a foundation layer
// that adapters can build on.
package chats

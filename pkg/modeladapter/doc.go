// Package modeladapter defines the completion capability the dispatcher
// depends on, and shared plumbing for provider adapters.
//
// It contains:
//   - [Completer] interface and embeddable [ModelAdapter] base struct with HTTP helpers, auth, and custom headers
//   - provider wire errors: [StatusError], [RateLimitError] and [ErrNoChoices]
//   - [github.com/germanamz/recipebot/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// This package contains no provider-specific code. Concrete adapters live in
// separate packages that import modeladapter.
package modeladapter

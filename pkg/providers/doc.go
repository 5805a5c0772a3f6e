// Package providers holds the concrete completion adapters.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/recipebot/pkg/providers/openai]: OpenAI Chat Completions via the official SDK; also any OpenAI-compatible endpoint
//   - [github.com/germanamz/recipebot/pkg/providers/anthropic]: Anthropic Messages API over the shared HTTP adapter base
//   - [github.com/germanamz/recipebot/pkg/providers/gemini]: Google Gemini via the GenAI SDK
//
// Each adapter implements [github.com/germanamz/recipebot/pkg/modeladapter.Completer].
package providers

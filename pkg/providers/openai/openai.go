// Package openai provides a Completer implementation for the OpenAI Chat
// Completions API, built on the official OpenAI Go SDK. Any OpenAI-compatible
// endpoint can be targeted with WithBaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/chats/role"
	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/germanamz/recipebot/pkg/modeladapter/usage"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultBaseURL is the public OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

var (
	_ modeladapter.Completer     = (*Adapter)(nil)
	_ modeladapter.UsageReporter = (*Adapter)(nil)
)

// Adapter implements modeladapter.Completer for the OpenAI Chat Completions API.
type Adapter struct {
	client openai.Client
	model  string
	usage  usage.Tracker
}

// Option configures an Adapter.
type Option func(*config)

type config struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithAPIKey sets the API key. If empty, the SDK falls back to OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithBaseURL sets a custom base URL, enabling Ollama, vLLM, Azure, or other
// OpenAI-compatible endpoints.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets the per-request timeout for API calls.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// New creates an Adapter for model. The SDK's built-in retries are disabled:
// failures surface to the caller on the first attempt.
func New(model string, opts ...Option) *Adapter {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.apiKey))
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}

	return &Adapter{
		client: openai.NewClient(clientOpts...),
		model:  model,
	}
}

// Model returns the model identifier sent with every request.
func (a *Adapter) Model() string { return a.model }

// UsageTracker returns the adapter's token usage tracker.
func (a *Adapter) UsageTracker() *usage.Tracker { return &a.usage }

// Complete sends the conversation to the Chat Completions API and returns the
// first choice as an assistant message.
func (a *Adapter) Complete(ctx context.Context, conv chat.Conversation) (message.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    a.model,
		Messages: toOpenAIMessages(conv),
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return message.Message{}, fmt.Errorf("openai: %w", translateError(err))
	}

	a.usage.Add(a.model, usage.TokenCount{
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	})

	if len(completion.Choices) == 0 {
		return message.Message{}, fmt.Errorf("openai: %w", modeladapter.ErrNoChoices)
	}

	return message.Assistant(completion.Choices[0].Message.Content), nil
}

// toOpenAIMessages converts conversation messages to the SDK union type.
// Unknown roles are sent as user messages.
func toOpenAIMessages(conv chat.Conversation) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(conv))
	for i, m := range conv {
		switch m.Role {
		case role.System:
			out[i] = openai.SystemMessage(m.Content)
		case role.User:
			out[i] = openai.UserMessage(m.Content)
		case role.Assistant:
			out[i] = openai.AssistantMessage(m.Content)
		default:
			out[i] = openai.UserMessage(m.Content)
		}
	}
	return out
}

// translateError maps SDK API errors onto the shared provider wire errors so
// callers can inspect them without importing the SDK.
func translateError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	if apiErr.StatusCode == http.StatusTooManyRequests {
		rl := &modeladapter.RateLimitError{Body: apiErr.Error()}
		if apiErr.Response != nil {
			rl.RetryAfter = modeladapter.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return rl
	}

	return &modeladapter.StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
}

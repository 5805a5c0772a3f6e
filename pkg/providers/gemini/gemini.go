// Package gemini provides a Completer implementation for the Google Gemini
// API, built on the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/chats/role"
	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/germanamz/recipebot/pkg/modeladapter/usage"
	"google.golang.org/genai"
)

var (
	_ modeladapter.Completer     = (*Adapter)(nil)
	_ modeladapter.UsageReporter = (*Adapter)(nil)
)

// modelsClient is the slice of the SDK's Models service the adapter uses.
type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// Config holds the settings used to build an Adapter.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string        // Optional API endpoint override.
	Timeout    time.Duration // Per-call timeout; zero leaves the context untouched.
	HTTPClient *http.Client
}

// Adapter implements modeladapter.Completer for the Gemini API.
type Adapter struct {
	models  modelsClient
	model   string
	timeout time.Duration
	usage   usage.Tracker
}

// New creates an Adapter backed by a Gemini API client.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := newClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Adapter{
		models:  client.Models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Model returns the model identifier sent with every request.
func (a *Adapter) Model() string { return a.model }

// UsageTracker returns the adapter's token usage tracker.
func (a *Adapter) UsageTracker() *usage.Tracker { return &a.usage }

// Complete sends the conversation to GenerateContent and returns the first
// candidate's visible text as an assistant message.
func (a *Adapter) Complete(ctx context.Context, conv chat.Conversation) (message.Message, error) {
	contents, cfg := buildRequest(conv)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		return message.Message{}, fmt.Errorf("gemini: %w", err)
	}

	if resp != nil && resp.UsageMetadata != nil {
		a.usage.Add(a.model, usage.TokenCount{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		})
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return message.Message{}, fmt.Errorf("gemini: %w", modeladapter.ErrNoChoices)
	}

	return message.Assistant(visibleText(resp.Candidates[0].Content)), nil
}

// buildRequest folds system messages into SystemInstruction; the remaining
// turns keep their order, with assistant mapped to the model role.
func buildRequest(conv chat.Conversation) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(conv))
	var system []string

	for _, m := range conv {
		switch m.Role {
		case role.System:
			system = append(system, m.Content)
		case role.Assistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}

	return contents, cfg
}

func visibleText(c *genai.Content) string {
	var sb strings.Builder
	for _, part := range c.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

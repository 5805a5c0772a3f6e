// Package anthropic provides a Completer implementation for the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/chats/role"
	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/germanamz/recipebot/pkg/modeladapter/usage"
)

// DefaultBaseURL is the public Anthropic API endpoint.
const DefaultBaseURL = "https://api.anthropic.com"

const (
	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"
)

var (
	_ modeladapter.Completer     = (*Adapter)(nil)
	_ modeladapter.UsageReporter = (*Adapter)(nil)
)

// Adapter implements modeladapter.Completer for the Anthropic Messages API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Anthropic API.
// The baseURL should be "https://api.anthropic.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-api-key",
	}
	a.Name = model
	a.MaxTokens = 4096
	a.Headers = map[string]string{
		"anthropic-version": apiVersion,
	}

	return a
}

// Complete sends a conversation to the Anthropic Messages API and returns the
// assistant's reply.
func (a *Adapter) Complete(ctx context.Context, conv chat.Conversation) (message.Message, error) {
	req := a.buildRequest(conv)

	var resp apiResponse
	if err := a.PostJSON(ctx, messagesPath, req, &resp); err != nil {
		return message.Message{}, fmt.Errorf("anthropic: %w", err)
	}

	a.Usage.Add(a.Name, usage.TokenCount{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	text, ok := resp.text()
	if !ok {
		return message.Message{}, fmt.Errorf("anthropic: %w", modeladapter.ErrNoChoices)
	}

	return message.Assistant(text), nil
}

// --- request types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string       `json:"role"`
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Content    []apiContent `json:"content"`
	StopReason string       `json:"stop_reason"`
	Usage      apiUsage     `json:"usage"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// text concatenates the text blocks of the response. ok is false when the
// response carries no text block at all.
func (r apiResponse) text() (string, bool) {
	var (
		sb    strings.Builder
		found bool
	)
	for _, block := range r.Content {
		if block.Type != "text" {
			continue
		}
		found = true
		sb.WriteString(block.Text)
	}
	return sb.String(), found
}

// --- conversion helpers ---

// buildRequest lifts system messages into the top-level system field, since
// the Messages API only accepts user and assistant turns.
func (a *Adapter) buildRequest(conv chat.Conversation) apiRequest {
	req := apiRequest{
		Model:     a.Name,
		MaxTokens: a.MaxTokens,
	}

	if a.Temperature != 0 {
		t := a.Temperature
		req.Temperature = &t
	}

	var system []string
	for _, m := range conv {
		if m.Role == role.System {
			system = append(system, m.Content)
			continue
		}
		appendMessage(&req.Messages, m)
	}
	req.System = strings.Join(system, "\n\n")

	return req
}

// appendMessage adds m as a text block, merging it into the previous message
// when both share a role so that turns keep alternating.
func appendMessage(msgs *[]apiMessage, m message.Message) {
	block := apiContent{Type: "text", Text: m.Content}
	msgRole := mapRole(m.Role)

	if n := len(*msgs); n > 0 && (*msgs)[n-1].Role == msgRole {
		(*msgs)[n-1].Content = append((*msgs)[n-1].Content, block)
		return
	}

	*msgs = append(*msgs, apiMessage{
		Role:    msgRole,
		Content: []apiContent{block},
	})
}

func mapRole(r role.Role) string {
	if r == role.Assistant {
		return "assistant"
	}
	return "user"
}

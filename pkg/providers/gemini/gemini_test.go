package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/chats/role"
	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubModels struct {
	resp *genai.GenerateContentResponse
	err  error

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
	gotDeadline bool
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.gotModel = model
	s.gotContents = contents
	s.gotConfig = cfg
	_, s.gotDeadline = ctx.Deadline()
	return s.resp, s.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     30,
			CandidatesTokenCount: 8,
		},
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{Model: "gemini-2.0-flash"})
	assert.ErrorContains(t, err, "api key is required")
}

func TestNew_ForwardsClientConfig(t *testing.T) {
	orig := newClient
	t.Cleanup(func() { newClient = orig })

	var got *genai.ClientConfig
	newClient = func(_ context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		got = cfg
		return &genai.Client{}, nil
	}

	a, err := New(context.Background(), Config{
		APIKey:  "g-key",
		Model:   "gemini-2.0-flash",
		BaseURL: "http://localhost:9999",
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "g-key", got.APIKey)
	assert.Equal(t, genai.BackendGeminiAPI, got.Backend)
	assert.Equal(t, "http://localhost:9999", got.HTTPOptions.BaseURL)
	assert.Equal(t, "gemini-2.0-flash", a.Model())
}

func TestNew_ClientError(t *testing.T) {
	orig := newClient
	t.Cleanup(func() { newClient = orig })

	newClient = func(context.Context, *genai.ClientConfig) (*genai.Client, error) {
		return nil, errors.New("boom")
	}

	_, err := New(context.Background(), Config{APIKey: "k"})
	assert.ErrorContains(t, err, "gemini: create client: boom")
}

func TestComplete_MapsMessages(t *testing.T) {
	stub := &stubModels{resp: textResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		&genai.Part{Text: "Try shakshuka."},
	)}
	a := &Adapter{models: stub, model: "gemini-2.0-flash"}

	msg, err := a.Complete(context.Background(), chat.New(
		message.System("You are a cook."),
		message.User("eggs"),
		message.Assistant("Omelette?"),
		message.User("something spicy"),
	))
	require.NoError(t, err)

	assert.Equal(t, role.Assistant, msg.Role)
	assert.Equal(t, "Try shakshuka.", msg.Content)
	assert.Equal(t, "gemini-2.0-flash", stub.gotModel)
	assert.False(t, stub.gotDeadline)

	require.Len(t, stub.gotContents, 3)
	assert.Equal(t, "user", string(stub.gotContents[0].Role))
	assert.Equal(t, "model", string(stub.gotContents[1].Role))
	assert.Equal(t, "Omelette?", stub.gotContents[1].Parts[0].Text)
	assert.Equal(t, "user", string(stub.gotContents[2].Role))

	require.NotNil(t, stub.gotConfig.SystemInstruction)
	assert.Equal(t, "You are a cook.", stub.gotConfig.SystemInstruction.Parts[0].Text)

	last, ok := a.UsageTracker().Last()
	require.True(t, ok)
	assert.Equal(t, 30, last.InputTokens)
	assert.Equal(t, 8, last.OutputTokens)
}

func TestComplete_AppliesTimeout(t *testing.T) {
	stub := &stubModels{resp: textResponse(&genai.Part{Text: "ok"})}
	a := &Adapter{models: stub, model: "m", timeout: time.Minute}

	_, err := a.Complete(context.Background(), chat.New(message.User("hi")))
	require.NoError(t, err)
	assert.True(t, stub.gotDeadline)
}

func TestComplete_NoCandidates(t *testing.T) {
	a := &Adapter{models: &stubModels{resp: &genai.GenerateContentResponse{}}, model: "m"}

	_, err := a.Complete(context.Background(), chat.New(message.User("hi")))
	assert.ErrorIs(t, err, modeladapter.ErrNoChoices)
}

func TestComplete_Error(t *testing.T) {
	a := &Adapter{models: &stubModels{err: errors.New("quota exceeded")}, model: "m"}

	_, err := a.Complete(context.Background(), chat.New(message.User("hi")))
	assert.EqualError(t, err, "gemini: quota exceeded")
}

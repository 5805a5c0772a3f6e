package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/chats/role"
	"github.com/germanamz/recipebot/pkg/dispatcher"
	"github.com/germanamz/recipebot/pkg/engine"
	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/germanamz/recipebot/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCompleter struct {
	model string
	err   error
}

func (e *echoCompleter) Complete(_ context.Context, conv chat.Conversation) (message.Message, error) {
	if e.err != nil {
		return message.Message{}, e.err
	}
	last, _ := conv.Last()
	return message.Assistant(" echo: " + last.Content + " "), nil
}

func TestNew_CustomProvider(t *testing.T) {
	var gotModel string
	engine.RegisterProvider("echo", func(_ context.Context, model string, cfg engine.ProviderConfig) (modeladapter.Completer, error) {
		gotModel = model
		assert.Equal(t, "echo-key", cfg.APIKey)
		return &echoCompleter{model: model}, nil
	})

	cfg := engine.Config{
		Model: "echo/parrot-1",
		Providers: map[string]engine.ProviderConfig{
			"echo": {APIKey: "echo-key"},
		},
	}

	eng, err := engine.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, "echo", eng.Kind())
	assert.Equal(t, "parrot-1", eng.Model())
	assert.Equal(t, "parrot-1", gotModel)
	assert.Nil(t, eng.Usage())

	out, err := eng.Dispatcher().Dispatch(context.Background(), chat.New(message.User("pasta for 4")))
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, prompt.Message(), out[0])
	assert.Equal(t, message.Assistant("echo: pasta for 4"), out[2])
}

func TestNew_ProviderErrorLabelled(t *testing.T) {
	engine.RegisterProvider("broken", func(context.Context, string, engine.ProviderConfig) (modeladapter.Completer, error) {
		return &echoCompleter{err: errors.New("connection reset")}, nil
	})

	eng, err := engine.New(context.Background(), engine.Config{Model: "broken/m1"}, nil)
	require.NoError(t, err)

	_, err = eng.Dispatcher().Dispatch(context.Background(), nil)

	var perr *dispatcher.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken", perr.Provider)
	assert.Equal(t, "m1", perr.Model)
}

func TestNew_FactoryError(t *testing.T) {
	_, err := engine.New(context.Background(), engine.Config{Model: "claude-3-5-haiku-latest"}, nil)
	assert.ErrorContains(t, err, `engine: provider "anthropic"`)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := engine.New(context.Background(), engine.Config{}, nil)
	assert.ErrorContains(t, err, "model is required")
}

func TestNew_OpenAICompatibleEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4.1", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, prompt.System(), req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4.1",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "\n  Try an omelette.  \n"},
			}},
			"usage": map[string]any{"prompt_tokens": 100, "completion_tokens": 5, "total_tokens": 105},
		})
	}))
	defer srv.Close()

	cfg := engine.Config{
		Model: "gpt-4.1",
		Providers: map[string]engine.ProviderConfig{
			engine.KindOpenAI: {APIKey: "test", BaseURL: srv.URL},
		},
	}

	eng, err := engine.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, engine.KindOpenAI, eng.Kind())

	out, err := eng.Dispatcher().Dispatch(context.Background(), chat.New(message.User("eggs")))
	require.NoError(t, err)

	last, ok := out.Last()
	require.True(t, ok)
	assert.Equal(t, role.Assistant, last.Role)
	assert.Equal(t, "Try an omelette.", last.Content)

	require.NotNil(t, eng.Usage())
	assert.Equal(t, 105, eng.Usage().Total().Total())
}

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/germanamz/recipebot/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml"))
	assert.Empty(t, resolveConfigPath(""))

	require.NoError(t, os.WriteFile(defaultConfigFile, []byte("model: gpt-4o\n"), 0o600))
	assert.Equal(t, defaultConfigFile, resolveConfigPath(""))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(engine.ModelEnv, "")

	cfg, err := loadConfig(options{})
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultModel, cfg.Model)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(engine.ModelEnv, "gpt-4o")
	require.NoError(t, os.WriteFile(defaultConfigFile, []byte("model: gpt-4o-mini\nlog:\n  level: info\n"), 0o600))

	cfg, err := loadConfig(options{model: "anthropic/claude-3-5-haiku-latest", logLevel: "debug", logFile: "bot.log"})
	require.NoError(t, err)

	assert.Equal(t, "anthropic/claude-3-5-haiku-latest", cfg.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "bot.log", cfg.Log.File)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := loadConfig(options{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestSendOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4.1",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Boil water.  "}}],` +
			`"usage":{"prompt_tokens":10,"completion_tokens":2,"total_tokens":12}}`))
	}))
	defer srv.Close()

	cfg := engine.DefaultConfig()
	cfg.Providers = map[string]engine.ProviderConfig{
		engine.KindOpenAI: {APIKey: "test", BaseURL: srv.URL},
	}

	eng, err := engine.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, sendOnce(context.Background(), eng, "pasta for 4", &out))
	assert.Equal(t, "Boil water.\n", out.String())
}

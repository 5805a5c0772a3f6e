package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/germanamz/recipebot/pkg/providers/anthropic"
	"github.com/germanamz/recipebot/pkg/providers/gemini"
	"github.com/germanamz/recipebot/pkg/providers/openai"
)

// Built-in provider kinds.
const (
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
	KindGemini    = "gemini"
)

// ProviderFactory creates a Completer for model from a ProviderConfig.
type ProviderFactory func(ctx context.Context, model string, cfg ProviderConfig) (modeladapter.Completer, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]ProviderFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factoryMu.Lock()
		defer factoryMu.Unlock()

		factories[KindOpenAI] = newOpenAI
		factories[KindAnthropic] = newAnthropic
		factories[KindGemini] = newGemini
	})
}

// RegisterProvider registers a custom provider factory under the given kind.
// It can be called before New to extend the engine with additional providers;
// models prefixed with "<kind>/" are then routed to it.
func RegisterProvider(kind string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// Kinds returns the registered provider kinds in sorted order.
func Kinds() []string {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (ProviderFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

// ResolveModel splits a model identifier into a provider kind and the model
// name sent to that provider. An identifier of the form "<kind>/<model>"
// with a registered kind routes explicitly. Otherwise the model family picks
// the provider: "claude*" goes to anthropic, "gemini*" to gemini and anything
// else, including slash-separated names of OpenAI-compatible servers, to
// openai unchanged.
func ResolveModel(id string) (kind, model string) {
	id = strings.TrimSpace(id)

	if prefix, rest, ok := strings.Cut(id, "/"); ok && rest != "" {
		if _, known := getFactory(prefix); known {
			return prefix, rest
		}
	}

	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(lower, "claude"):
		return KindAnthropic, id
	case strings.HasPrefix(lower, "gemini"):
		return KindGemini, id
	default:
		return KindOpenAI, id
	}
}

func newOpenAI(_ context.Context, model string, cfg ProviderConfig) (modeladapter.Completer, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []openai.Option{openai.WithAPIKey(cfg.APIKey), openai.WithTimeout(timeout)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	return openai.New(model, opts...), nil
}

func newAnthropic(_ context.Context, model string, cfg ProviderConfig) (modeladapter.Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required (set ANTHROPIC_API_KEY)")
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropic.DefaultBaseURL
	}

	a := anthropic.New(strings.TrimRight(baseURL, "/"), cfg.APIKey, model)
	a.Timeout = timeout

	return a, nil
}

func newGemini(ctx context.Context, model string, cfg ProviderConfig) (modeladapter.Completer, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	return gemini.New(ctx, gemini.Config{
		APIKey:  cfg.APIKey,
		Model:   model,
		BaseURL: cfg.BaseURL,
		Timeout: timeout,
	})
}

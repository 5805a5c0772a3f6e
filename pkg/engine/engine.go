package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/germanamz/recipebot/pkg/dispatcher"
	"github.com/germanamz/recipebot/pkg/modeladapter"
	"github.com/germanamz/recipebot/pkg/modeladapter/usage"
)

// Engine holds the completer and dispatcher built from a Config.
type Engine struct {
	cfg        Config
	kind       string
	model      string
	completer  modeladapter.Completer
	dispatcher *dispatcher.Dispatcher
}

// New validates cfg, resolves its model to a provider, and builds the
// Dispatcher. A nil logger falls back to slog.Default.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	kind, model := ResolveModel(cfg.Model)

	factory, ok := getFactory(kind)
	if !ok {
		return nil, fmt.Errorf("engine: unknown provider kind %q", kind)
	}

	c, err := factory(ctx, model, cfg.Provider(kind))
	if err != nil {
		return nil, fmt.Errorf("engine: provider %q: %w", kind, err)
	}

	log.Debug("engine ready", "provider", kind, "model", model)

	return &Engine{
		cfg:       cfg,
		kind:      kind,
		model:     model,
		completer: c,
		dispatcher: dispatcher.New(c,
			dispatcher.WithLogger(log),
			dispatcher.WithProviderName(kind),
			dispatcher.WithModel(model),
		),
	}, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config { return e.cfg }

// Kind returns the resolved provider kind.
func (e *Engine) Kind() string { return e.kind }

// Model returns the model name sent to the provider.
func (e *Engine) Model() string { return e.model }

// Dispatcher returns the conversation dispatcher.
func (e *Engine) Dispatcher() *dispatcher.Dispatcher { return e.dispatcher }

// Usage returns the provider's token usage tracker, or nil when the provider
// does not report usage.
func (e *Engine) Usage() *usage.Tracker {
	if ur, ok := e.completer.(modeladapter.UsageReporter); ok {
		return ur.UsageTracker()
	}
	return nil
}

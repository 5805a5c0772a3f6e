package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/germanamz/recipebot/pkg/logging"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultModel is used when neither the config file nor MODEL_NAME names a model.
	DefaultModel = "gpt-4.1"
	// ModelEnv is the environment variable holding the model identifier.
	ModelEnv = "MODEL_NAME"
)

// apiKeyEnvs lists, per provider kind, the environment variables consulted
// when the config leaves api_key empty. The first non-empty one wins.
var apiKeyEnvs = map[string][]string{
	KindOpenAI:    {"OPENAI_API_KEY"},
	KindAnthropic: {"ANTHROPIC_API_KEY"},
	KindGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Config is the top-level recipebot configuration.
type Config struct {
	Model     string                    `yaml:"model"`
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
	Log       logging.Config            `yaml:"log"`
}

// ProviderConfig holds connection settings for one provider kind.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"` //nolint:gosec // configuration field, not a hardcoded secret
	BaseURL string `yaml:"base_url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"` // Duration string, e.g. "60s".
}

// TimeoutDuration parses Timeout. An empty value yields zero, meaning the
// provider default.
func (p ProviderConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", p.Timeout)
	}
	return d, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{Model: DefaultModel}
}

// LoadConfig reads a YAML file and returns a Config layered over
// DefaultConfig. Environment variables referenced as ${VAR} or $VAR in the
// YAML are expanded before parsing, so API keys can stay in the environment
// (e.g. loaded from a .env file) rather than in the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return cfg, nil
}

// Load returns the configuration from path, or DefaultConfig when path is
// empty, with environment overrides applied.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return Config{}, err
		}
	}
	return cfg.WithEnv(os.Getenv), nil
}

// WithEnv returns a copy of c with environment overrides applied: a non-empty
// MODEL_NAME replaces Model, and empty API keys are filled from the provider's
// well-known variables.
func (c Config) WithEnv(getenv func(string) string) Config {
	out := c
	if m := strings.TrimSpace(getenv(ModelEnv)); m != "" {
		out.Model = m
	}

	out.Providers = make(map[string]ProviderConfig, len(c.Providers)+len(apiKeyEnvs))
	for kind, pc := range c.Providers {
		out.Providers[kind] = pc
	}

	for kind, envs := range apiKeyEnvs {
		pc := out.Providers[kind]
		if pc.APIKey != "" {
			continue
		}
		for _, env := range envs {
			if v := getenv(env); v != "" {
				pc.APIKey = v
				break
			}
		}
		if pc != (ProviderConfig{}) {
			out.Providers[kind] = pc
		}
	}

	return out
}

// Provider returns the settings for kind; missing kinds yield the zero value.
func (c Config) Provider(kind string) ProviderConfig {
	return c.Providers[kind]
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("engine: config: model is required")
	}

	for kind, pc := range c.Providers {
		if _, ok := getFactory(kind); !ok {
			return fmt.Errorf("engine: config: unknown provider %q", kind)
		}
		if _, err := pc.TimeoutDuration(); err != nil {
			return fmt.Errorf("engine: config: provider %q: invalid timeout %q: %w", kind, pc.Timeout, err)
		}
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("engine: config: %w", err)
	}

	return nil
}

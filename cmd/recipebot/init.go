package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/germanamz/recipebot/pkg/engine"
	"github.com/germanamz/recipebot/pkg/logging"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

type providerDefault struct {
	APIKeyEnv string
	Model     string
}

var providerDefaults = map[string]providerDefault{
	engine.KindOpenAI:    {APIKeyEnv: "OPENAI_API_KEY", Model: engine.DefaultModel},
	engine.KindAnthropic: {APIKeyEnv: "ANTHROPIC_API_KEY", Model: "claude-3-5-haiku-latest"},
	engine.KindGemini:    {APIKeyEnv: "GEMINI_API_KEY", Model: "gemini-2.0-flash"},
}

// initAnswers are the values collected by the init wizard.
type initAnswers struct {
	Kind      string
	Model     string
	APIKeyEnv string
	LogLevel  string
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: recipebot init [flags]\n\nCreate a configuration file interactively.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	path := fs.String("config", defaultConfigFile, "path of the configuration file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	answers, err := runWizard()
	if err != nil {
		return err
	}

	data, err := marshalInitConfig(answers)
	if err != nil {
		return err
	}

	old, err := os.ReadFile(*path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("init: read %s: %w", *path, err)
	default:
		diff := configDiff(*path, string(old), string(data))
		if diff == "" {
			fmt.Printf("%s is already up to date\n", *path)
			return nil
		}
		fmt.Println(colorDiff(diff))

		overwrite := false
		if err := newForm(huh.NewGroup(
			huh.NewConfirm().Title(fmt.Sprintf("Overwrite %s?", *path)).Value(&overwrite),
		)).Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Aborted, nothing written.")
			return nil
		}
	}

	if err := os.WriteFile(*path, data, 0o600); err != nil {
		return fmt.Errorf("init: write %s: %w", *path, err)
	}

	fmt.Printf("Wrote %s. Set %s in your environment or .env file, then run recipebot.\n", *path, answers.APIKeyEnv)
	return nil
}

// newForm builds a wizard form that draws on stderr so stdout stays clean.
func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithProgramOptions(tea.WithOutput(os.Stderr))
}

func runWizard() (initAnswers, error) {
	a := initAnswers{Kind: engine.KindOpenAI, LogLevel: "info"}

	if err := newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Provider").
			Options(
				huh.NewOption("OpenAI (or compatible)", engine.KindOpenAI),
				huh.NewOption("Anthropic", engine.KindAnthropic),
				huh.NewOption("Google Gemini", engine.KindGemini),
			).
			Value(&a.Kind),
	)).Run(); err != nil {
		return initAnswers{}, err
	}

	def := providerDefaults[a.Kind]
	a.Model = def.Model
	a.APIKeyEnv = def.APIKeyEnv

	if err := newForm(huh.NewGroup(
		huh.NewInput().Title("Model").Value(&a.Model).Validate(validateRequired),
		huh.NewInput().Title("API key env var").Value(&a.APIKeyEnv).Validate(validateEnvName),
		huh.NewSelect[string]().
			Title("Log level").
			Options(huh.NewOptions("debug", "info", "warn", "error")...).
			Value(&a.LogLevel),
	)).Run(); err != nil {
		return initAnswers{}, err
	}

	return a, nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validateEnvName(s string) error {
	if s == "" {
		return errors.New("required")
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("invalid character %q", r)
		}
	}
	return nil
}

// buildInitConfig turns wizard answers into a Config. The model is prefixed
// with the provider kind when its name alone would route elsewhere.
func buildInitConfig(a initAnswers) engine.Config {
	model := strings.TrimSpace(a.Model)
	if kind, _ := engine.ResolveModel(model); kind != a.Kind {
		model = a.Kind + "/" + model
	}

	return engine.Config{
		Model: model,
		Providers: map[string]engine.ProviderConfig{
			a.Kind: {APIKey: "${" + a.APIKeyEnv + "}"},
		},
		Log: logging.Config{Level: a.LogLevel, Format: "text"},
	}
}

func marshalInitConfig(a initAnswers) ([]byte, error) {
	cfg := buildInitConfig(a)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("init: marshal config: %w", err)
	}
	return data, nil
}

// configDiff returns a unified diff between the existing and proposed file
// contents. Returns an empty string when they are equal.
func configDiff(path, oldContent, newContent string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: path,
		ToFile:   path + " (new)",
		Context:  3,
	}

	result, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("(diff error: %v)", err)
	}
	return result
}

// colorDiff styles added and removed lines of a unified diff.
func colorDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			lines[i] = mutedStyle.Render(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = addedStyle.Render(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = removeStyle.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

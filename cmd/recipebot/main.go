// Command recipebot is an interactive terminal client for the recipe
// assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/engine"
	"github.com/germanamz/recipebot/pkg/logging"
)

const defaultConfigFile = "recipebot.yaml"

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: recipebot [flags]\n       recipebot init [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  init    Create a configuration file interactively\n")
	}

	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "path to configuration file (default: "+defaultConfigFile+" if present)")
	flag.StringVar(&opts.envFile, "env", ".env", "path to .env file (ignored if missing)")
	flag.StringVar(&opts.model, "model", "", "model identifier, e.g. gpt-4.1 or anthropic/claude-3-5-haiku-latest (overrides "+engine.ModelEnv+")")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flag.StringVar(&opts.logFile, "log-file", "", "write logs to this rotating file instead of stderr")
	flag.StringVar(&opts.prompt, "prompt", "", "send a single message, print the reply and exit")
	flag.Parse()

	if err := loadDotEnv(opts.envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	envFile    string
	model      string
	logLevel   string
	logFile    string
	prompt     string
}

// resolveConfigPath returns the explicit path, or the default file when it
// exists in the working directory, or "" for built-in defaults.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// loadConfig layers flag overrides on top of the file and environment.
func loadConfig(opts options) (engine.Config, error) {
	cfg, err := engine.Load(resolveConfigPath(opts.configPath))
	if err != nil {
		return engine.Config{}, err
	}

	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}

	return cfg, nil
}

func run(opts options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	eng, err := engine.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	if opts.prompt != "" {
		return sendOnce(ctx, eng, opts.prompt, os.Stdout)
	}

	initMarkdownRenderer(100)

	s := newSession(eng.Dispatcher(), eng.Usage(), os.Stdout)
	s.spinnerOut = os.Stderr

	fmt.Printf("%s %s (%s)\n", titleStyle.Render("recipebot"), eng.Model(), eng.Kind())
	fmt.Printf("Ask for a recipe. Type %s for commands, %s to exit.\n\n", mutedStyle.Render("/help"), mutedStyle.Render("/quit"))

	return s.loop(ctx, os.Stdin)
}

// sendOnce dispatches a single user message and prints the raw reply.
func sendOnce(ctx context.Context, eng *engine.Engine, text string, out io.Writer) error {
	conv, err := eng.Dispatcher().Dispatch(ctx, chat.New(message.User(text)))
	if err != nil {
		return err
	}

	last, _ := conv.Last()
	_, err = fmt.Fprintln(out, last.Content)
	return err
}

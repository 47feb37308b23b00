// Package cli is the hard-wordle command line: serve, play, eval, dataset and score.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/TanmayKhot/hard-wordle-eval/internal/config"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/secret"
	"github.com/TanmayKhot/hard-wordle-eval/internal/words"
)

// App represents the CLI application.
type App struct {
	root       *cobra.Command
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	configPath string
}

// New creates the CLI application.
func New() *App {
	app := &App{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}

	app.root = &cobra.Command{
		Use:   "hard-wordle",
		Short: "Hard-mode Wordle environment for evaluating and training agents",
		Long: `hard-wordle runs a hard-mode Wordle environment: every guess after the first
must keep the previous guess's green letters in place and reuse its yellow
letters. Episodes can be played interactively, served over HTTP to trainers,
or evaluated in batch with the built-in rubric.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "YAML config file")

	app.root.AddCommand(
		app.newServeCmd(),
		app.newPlayCmd(),
		app.newEvalCmd(),
		app.newDatasetCmd(),
		app.newScoreCmd(),
	)
	return app
}

// WithIO sets custom streams.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin, a.stdout, a.stderr = stdin, stdout, stderr
	a.root.SetIn(stdin)
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI until done or interrupted.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.root.ExecuteContext(ctx)
}

// runtime is what every command builds before doing work.
type runtime struct {
	cfg      *config.Config
	dict     *words.Dictionary
	registry *env.Registry
	picker   *secret.Picker
	parser   *reward.Parser
	rubric   *reward.Rubric
	prompt   string
}

func (a *App) setup() (*runtime, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.LogLevel, a.stderr)

	dict, err := words.Load(cfg.Words.AnswersFile, cfg.Words.AllowedFile, words.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to load word lists: %w", err)
	}
	reg, err := env.NewRegistry(dict, cfg.Specs()...)
	if err != nil {
		return nil, err
	}
	a1, g := dict.Stats()
	log.Debug().Int("answers", a1).Int("allowed", g).Strs("envs", reg.IDs()).Msg("word lists loaded")

	p := cfg.Parser()
	return &runtime{
		cfg:      cfg,
		dict:     dict,
		registry: reg,
		picker:   secret.NewPicker(cfg.Env.SecretSalt, dict),
		parser:   p,
		rubric:   reward.NewRubric(p, cfg.Rubric),
		prompt:   env.SystemPrompt(cfg.Env.Think),
	}, nil
}

// setupLogging sets the global level and uses a console writer on terminals.
func setupLogging(level string, w io.Writer) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

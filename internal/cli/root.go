// Package cli implements the fetchctl command line.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/tjfontaine/polyglot-fetch/internal/config"
)

type app struct {
	cfgPath string
	debug   bool

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs fetchctl and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCommand builds the fetchctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "fetchctl",
		Short:        "Fetch, classify and decode HTTP resources",
		Long:         `fetchctl sends a request, classifies the response by status, decodes the body and prints the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default is "+config.DefaultFile+" if present)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(newGetCommand(a))
	root.AddCommand(newHistoryCommand(a))

	return root
}

func (a *app) setup(stderr io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		slog.New(tint.NewHandler(stderr, nil)).Error("failed to load config", "error", err)
		return err
	}
	a.cfg = cfg

	level, _ := cfg.Log.SlogLevel()
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = newLogger(stderr, cfg.Log.Format, level)
	slog.SetDefault(a.logger)

	return nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
}

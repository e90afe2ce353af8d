package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/macrosim/internal/config"
	"github.com/roach88/macrosim/internal/console"
	"github.com/roach88/macrosim/internal/llm"
	"github.com/roach88/macrosim/internal/narrative"
	"github.com/roach88/macrosim/internal/sim"
	"github.com/roach88/macrosim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Fast     bool
	NoColor  bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation over all future events",
		Long: `Run the simulation: load all not-yet-happened releases and macro
events, start the compressed clock, and fire each event at its scheduled
real-time offset. Each impact evolves the macro state; narratives are
generated when an API key is configured.

Example:
  macrosim run --db ./macrosim.db
  macrosim run --db ./macrosim.db --fast`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Fast, "fast", false, "fast-forward: fire events without waiting")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable ANSI colors")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	slog.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	var generator *narrative.Generator
	if cfg.NarrativesEnabled() {
		client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model)
		generator = narrative.NewGenerator(client, cfg.NarrativeTemperature, cfg.NarrativeMaxTokens)
		slog.Info("narratives enabled", "model", cfg.Model)
	} else {
		slog.Info("narratives disabled: no API key configured")
	}

	presenter := console.NewPresenter(cmd.OutOrStdout(), !opts.NoColor)

	// Setup signal handling for graceful shutdown
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runner, err := sim.NewRunner(ctx, st, sim.Options{
		DayDuration: cfg.DayDuration(),
		Generator:   generator,
		Presenter:   presenter,
		Fast:        opts.Fast,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare simulation", err)
	}

	presenter.Welcome()

	if err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("simulation interrupted")
			return nil
		}
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	presenter.Goodbye()
	return nil
}

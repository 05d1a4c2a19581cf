package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapscan/internal/batch"
)

// ErrInvalidStatements is returned by check when at least one line fails.
var ErrInvalidStatements = errors.New("one or more statements are invalid")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Workers   int
	SkipBlank bool
	Record    bool
	Watch     bool
	Debounce  time.Duration
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check a file of statements, one per line",
		Long: `Analyze every line of a file as its own statement and report the
lines that fail. The command exits non-zero when any line is invalid.

With --record the report is stored in the run history. With --watch the
file is checked again whenever it changes.`,
		Example: `  leapscan check queries.sql
  leapscan check queries.sql --workers 8 --record
  leapscan check queries.sql --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Number of statements analyzed concurrently")
	cmd.Flags().BoolVar(&opts.SkipBlank, "skip-blank", true, "Ignore blank lines")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Store the report in the run history")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-check the file when it changes")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Delay before re-checking after a change")

	return cmd
}

// resolveCheckOptions fills unset flags from the loaded config.
func resolveCheckOptions(cmd *cobra.Command, cmdCtx *CommandContext, opts *CheckOptions) CheckOptions {
	resolved := *opts
	if !cmd.Flags().Changed("workers") {
		resolved.Workers = cmdCtx.Cfg.Workers
	}
	if !cmd.Flags().Changed("skip-blank") {
		resolved.SkipBlank = cmdCtx.Cfg.SkipBlankLines
	}
	if !cmd.Flags().Changed("record") {
		resolved.Record = cmdCtx.Cfg.Record
	}
	if !cmd.Flags().Changed("debounce") {
		resolved.Debounce = cmdCtx.Cfg.WatchDebounce
	}
	return resolved
}

func runCheck(cmd *cobra.Command, path string, opts *CheckOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	resolved := resolveCheckOptions(cmd, cmdCtx, opts)

	if !resolved.Watch {
		return checkOnce(cmd.Context(), cmdCtx, path, resolved)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = batch.Watch(ctx, path, resolved.Debounce, cmdCtx.Logger, func(ctx context.Context) error {
		if err := checkOnce(ctx, cmdCtx, path, resolved); err != nil && !errors.Is(err, ErrInvalidStatements) {
			return err
		}
		cmdCtx.Renderer.Muted("Watching " + path + " for changes...")
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func checkOnce(ctx context.Context, cmdCtx *CommandContext, path string, opts CheckOptions) error {
	report, err := batch.RunFile(ctx, path, batch.Options{
		Workers:        opts.Workers,
		SkipBlankLines: opts.SkipBlank,
		Logger:         cmdCtx.Logger,
	})
	if err != nil {
		return err
	}

	var runID string
	if opts.Record {
		store, cleanup, err := cmdCtx.OpenStore()
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := store.RecordReport(report)
		if err != nil {
			return err
		}
		runID = run.ID
	}

	if err := renderReport(cmdCtx.Renderer, report, runID); err != nil {
		return err
	}
	if report.Failed() > 0 {
		return ErrInvalidStatements
	}
	return nil
}

// Package commands implements the leapscan subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapscan/internal/cli/config"
	"github.com/leapstack-labs/leapscan/internal/cli/output"
	"github.com/leapstack-labs/leapscan/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the context from the config and logger that the
// root command stored on cmd.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// OpenStore opens and migrates the run history database.
// The returned cleanup function must be called (typically via defer).
func (c *CommandContext) OpenStore() (*state.SQLiteStore, func(), error) {
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate state store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

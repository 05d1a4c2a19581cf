package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapscan/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command and its show subcommand.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded check runs",
		Long: `List the check runs stored with 'leapscan check --record',
newest first.`,
		Example: `  leapscan runs
  leapscan runs --limit 5 -o json
  leapscan runs show <run-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(newRunsShowCommand())

	return cmd
}

func newRunsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the line results of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowRun(cmd, args[0])
		},
	}
}

func runListRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if handled, err := r.Structured(runs); handled {
		return err
	}

	if len(runs) == 0 {
		r.Muted("No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Source,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Failed),
		})
	}
	r.Table([]string{"ID", "Source", "Status", "Started", "Total", "Failed"}, rows)
	return nil
}

// runDetail is the structured form of one run with its lines.
type runDetail struct {
	state.Run `yaml:",inline"`
	Lines      []*state.LineRecord `json:"lines" yaml:"lines"`
}

func runShowRun(cmd *cobra.Command, id string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	lines, err := store.ListLineResults(id)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if handled, err := r.Structured(runDetail{Run: *run, Lines: lines}); handled {
		return err
	}

	r.Header(1, "Run "+run.ID)
	pairs := [][2]string{
		{"Source", run.Source},
		{"Status", string(run.Status)},
		{"Started", run.StartedAt.Local().Format(time.DateTime)},
		{"Statements", fmt.Sprintf("%d (%d failed)", run.Total, run.Failed)},
	}
	if run.CompletedAt != nil {
		pairs = append(pairs, [2]string{"Duration", run.CompletedAt.Sub(run.StartedAt).String()})
	}
	r.KeyValues(pairs)

	if len(lines) == 0 {
		return nil
	}
	r.Println("")
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		status, detail := "ok", l.Where
		if !l.OK {
			status, detail = l.ErrorKind, l.Message
		}
		rows = append(rows, []string{strconv.Itoa(l.Line), status, detail})
	}
	r.Table([]string{"Line", "Result", "Detail"}, rows)
	return nil
}

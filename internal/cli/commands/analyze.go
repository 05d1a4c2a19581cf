package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	InputFile string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [SQL]",
		Short: "Analyze a single SELECT statement",
		Long: `Analyze one SELECT statement and print its clause model.

The statement is taken from the arguments, from --input, or from stdin
when stdin is not a terminal. It must end with ';'.`,
		Example: `  leapscan analyze "SELECT id FROM users WHERE id = 1;"
  leapscan analyze --input query.sql -o json
  echo "SELECT * FROM t;" | leapscan analyze`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Read the statement from a file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	sql, err := readStatement(cmd, args, opts.InputFile)
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("analyzing statement", "length", len(sql))

	stmt, err := analyzer.Analyze(sql)
	if err != nil {
		if rerr := renderParseError(cmdCtx.Renderer, sql, err); rerr != nil {
			return rerr
		}
		return err
	}
	return renderStatement(cmdCtx.Renderer, stmt)
}

// readStatement resolves the statement text from args, a file or stdin.
// Trailing line breaks are dropped so files ending in a newline still end
// with ';'.
func readStatement(cmd *cobra.Command, args []string, inputFile string) (string, error) {
	var raw string
	switch {
	case len(args) > 0 && inputFile != "":
		return "", errors.New("pass the statement as an argument or with --input, not both")
	case len(args) > 0:
		raw = strings.Join(args, " ")
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		raw = string(data)
	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "", errors.New("no statement given: pass it as an argument, with --input, or on stdin")
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = string(data)
	}
	return strings.TrimRight(raw, "\r\n"), nil
}

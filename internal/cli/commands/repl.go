package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapscan/internal/cli/output"
	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

const (
	replPrompt         = "leapscan> "
	replContinuePrompt = "     ...> "
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Analyze statements interactively",
		Long: `Start an interactive session. Each statement is analyzed once it
ends with ';'. Statements may span several lines.`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	historyFile := ""
	if cmdCtx.Cfg.StatePath != "" && cmdCtx.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newKeywordCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "leapscan REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	session := newReplSession(cmdCtx.Renderer)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(session.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if quit := session.handleLine(line); quit {
			break
		}
		rl.SetPrompt(session.prompt())
	}
	return nil
}

// replSession accumulates input lines into statements and renders each
// analyzed statement.
type replSession struct {
	renderer *output.Renderer
	buf      strings.Builder
}

func newReplSession(r *output.Renderer) *replSession {
	return &replSession{renderer: r}
}

func (s *replSession) reset() { s.buf.Reset() }

func (s *replSession) pending() bool { return s.buf.Len() > 0 }

func (s *replSession) prompt() string {
	if s.pending() {
		return replContinuePrompt
	}
	return replPrompt
}

// handleLine consumes one input line and reports whether the session should
// end.
func (s *replSession) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !s.pending() && strings.HasPrefix(line, ".") {
		return s.handleDotCommand(line)
	}

	if s.pending() {
		s.buf.WriteString(" ")
	}
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		return false
	}

	sql := s.buf.String()
	s.buf.Reset()

	stmt, err := analyzer.Analyze(sql)
	if err != nil {
		if rerr := renderParseError(s.renderer, sql, err); rerr != nil {
			s.renderer.Error(rerr.Error())
		}
	} else if rerr := renderStatement(s.renderer, stmt); rerr != nil {
		s.renderer.Error(rerr.Error())
	}
	s.renderer.Println("")
	return false
}

func (s *replSession) handleDotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])
	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printReplHelp(s.renderer.Writer())
	default:
		s.renderer.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .quit / .exit   Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for keywords
`
	_, _ = fmt.Fprintln(w, help)
}

func newKeywordCompleter() *readline.PrefixCompleter {
	keywords := []string{
		"SELECT", "FROM", "WHERE", "GROUP BY", "ORDER BY", "LIMIT", "OFFSET",
		"LEFT JOIN", "RIGHT JOIN", "INNER JOIN", "FULL OUTER JOIN", "ON",
		"AND", "OR", "NOT", "IS NULL", "IN", "LIKE", "BETWEEN",
	}
	items := make([]readline.PrefixCompleterInterface, 0, len(keywords)+3)
	for _, kw := range keywords {
		items = append(items, readline.PcItem(kw))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}

package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapscan/internal/batch"
	"github.com/leapstack-labs/leapscan/internal/cli/output"
	"github.com/leapstack-labs/leapscan/internal/cli/testutil"
	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

func TestNewAnalyzeCommand(t *testing.T) {
	cmd := NewAnalyzeCommand()
	assert.Equal(t, "analyze [SQL]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("input"))
}

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()
	assert.Equal(t, "check <file>", cmd.Use)
	for _, name := range []string{"workers", "skip-blank", "record", "watch", "debounce"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestNewRunsCommand(t *testing.T) {
	cmd := NewRunsCommand()
	assert.NotNil(t, cmd.Flags().Lookup("limit"))

	show, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)
	assert.Equal(t, "show <run-id>", show.Use)
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.Run(cmd, nil)
	assert.Contains(t, buf.String(), "leapscan v1.2.3")
}

func TestReadStatement(t *testing.T) {
	newCmd := func(stdin string) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(stdin))
		return cmd
	}

	got, err := readStatement(newCmd(""), []string{"SELECT", "a", "FROM", "b;"}, "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM b;", got)

	got, err = readStatement(newCmd("SELECT a FROM b;\r\n"), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM b;", got)

	_, err = readStatement(newCmd(""), []string{"SELECT"}, "file.sql")
	require.Error(t, err)

	_, err = readStatement(newCmd(""), nil, "does-not-exist.sql")
	require.Error(t, err)
}

func TestCaretLine(t *testing.T) {
	sql := "SLECT a FROM b;"
	_, err := analyzer.Analyze(sql)
	require.Error(t, err)
	assert.Equal(t, " ^", caretLine(sql, err))

	assert.Empty(t, caretLine(sql, errors.New("plain")))

	_, err = analyzer.Analyze("SELECT a FROM b")
	require.Error(t, err)
	assert.Empty(t, caretLine("SELECT a FROM b", err), "errors without a position have no caret")
}

func TestRenderStatement(t *testing.T) {
	stmt, err := analyzer.Analyze("SELECT a FROM t LEFT JOIN u ON t.id = u.id WHERE a = 1;")
	require.NoError(t, err)

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, renderStatement(tr.Renderer, stmt))

	out := tr.Output()
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Statement")
	assert.Contains(t, out, "## Joins")
	assert.Contains(t, out, "Left")
	assert.Contains(t, out, "t.id")
}

func TestRenderReport(t *testing.T) {
	path := testutil.SetupStatementFile(t, "SELECT a FROM b;", "SELECT a FROM b")
	report, err := batch.RunFile(t.Context(), path, batch.Options{Workers: 2})
	require.NoError(t, err)

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, renderReport(tr.Renderer, report, ""))
	out := tr.Output()
	assert.Contains(t, out, "MissingTerminator")
	assert.Contains(t, out, "1 of 2 statements invalid")

	tr = testutil.NewTestRendererJSON()
	require.NoError(t, renderReport(tr.Renderer, report, "run-1"))
	assert.Contains(t, tr.Output(), `"run_id": "run-1"`)
	assert.Contains(t, tr.Output(), `"failed": 1`)
}

func TestReplSession(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeMarkdown, false)
	s := newReplSession(tr.Renderer)

	assert.Equal(t, replPrompt, s.prompt())
	assert.False(t, s.handleLine("SELECT a"))
	assert.Equal(t, replContinuePrompt, s.prompt())
	assert.Empty(t, tr.Output())

	assert.False(t, s.handleLine("FROM b;"))
	assert.Equal(t, replPrompt, s.prompt())
	assert.Contains(t, tr.Output(), "# Statement")

	tr.Reset()
	assert.False(t, s.handleLine("SELECT a FROM;"))
	assert.NotEmpty(t, tr.ErrorOutput())

	tr.Reset()
	assert.False(t, s.handleLine(".help"))
	assert.Contains(t, tr.Output(), ".quit / .exit")

	tr = testutil.NewTestRendererText()
	s = newReplSession(tr.Renderer)
	assert.False(t, s.handleLine(".bogus"))
	assert.Contains(t, tr.ErrorOutput(), "unknown command")

	assert.True(t, s.handleLine(".quit"))
	assert.True(t, s.handleLine(".EXIT"))
}

func TestReplSessionInterrupt(t *testing.T) {
	s := newReplSession(testutil.NewTestRendererMarkdown().Renderer)
	s.handleLine("SELECT a")
	s.reset()
	assert.Equal(t, replPrompt, s.prompt())
}

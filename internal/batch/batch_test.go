package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapscan/internal/testutil"
	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

const sampleInput = "SELECT * FROM users;\n" +
	"SLECT ;\n" +
	"\n" +
	"SELECT a, b FROM x WHERE a = 1;\r\n" +
	"SELECT `email ;\n"

func TestRun_ContinuesPastFailures(t *testing.T) {
	report, err := Run(context.Background(), "sample.sql", strings.NewReader(sampleInput), Options{
		SkipBlankLines: true,
		Logger:         testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 4)
	assert.Equal(t, 2, report.Passed())
	assert.Equal(t, 2, report.Failed())

	lines := make([]int, 0, len(report.Results))
	for _, res := range report.Results {
		lines = append(lines, res.Line)
	}
	assert.Equal(t, []int{1, 2, 4, 5}, lines)

	assert.True(t, report.Results[0].OK())
	assert.Equal(t, []string{"*"}, report.Results[0].Statement.Columns)
	assert.True(t, errors.Is(report.Results[1].Err, analyzer.ErrInvalidToken))
	assert.Equal(t, "a EQUAL 29 1", report.Results[2].Statement.Where)
	assert.True(t, errors.Is(report.Results[3].Err, analyzer.ErrUnclosedQuote))

	assert.Equal(t, []string{
		"line 2: invalid character 'L' at position 1",
		"line 5: unclosed quoted identifier: unexpected ' ' at position 13",
	}, report.Diagnostics())
}

func TestRun_BlankLinesReported(t *testing.T) {
	report, err := Run(context.Background(), "sample.sql", strings.NewReader(sampleInput), Options{})
	require.NoError(t, err)

	require.Len(t, report.Results, 5)
	assert.True(t, errors.Is(report.Results[2].Err, analyzer.ErrEmptyInput))
}

func TestRun_ParallelKeepsOrder(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		if i%3 == 0 {
			b.WriteString("SELECT broken\n")
		} else {
			b.WriteString("SELECT c FROM t LIMIT 1;\n")
		}
	}

	report, err := Run(context.Background(), "gen", strings.NewReader(b.String()), Options{Workers: 8})
	require.NoError(t, err)
	require.Len(t, report.Results, 200)
	for i, res := range report.Results {
		assert.Equal(t, i+1, res.Line)
		assert.Equal(t, i%3 != 0, res.OK(), "line %d", res.Line)
	}
	assert.Equal(t, 67, report.Failed())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, "sample.sql", strings.NewReader(sampleInput), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT id FROM t;\nSELECT id FROM t\n"), 0o644))

	report, err := RunFile(context.Background(), path, Options{SkipBlankLines: true})
	require.NoError(t, err)
	assert.Equal(t, path, report.Source)
	assert.Equal(t, 1, report.Failed())
	assert.True(t, errors.Is(report.Results[1].Err, analyzer.ErrMissingTerminator))
	assert.False(t, report.Finished.Before(report.Started))
}

func TestRunFile_Missing(t *testing.T) {
	_, err := RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.sql"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestRun_LogsRejectedLines(t *testing.T) {
	logger, logs := testutil.NewBufferLogger()
	_, err := Run(context.Background(), "sample.sql", strings.NewReader(sampleInput), Options{
		SkipBlankLines: true,
		Workers:        2,
		Logger:         logger,
	})
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "batch started")
	assert.Contains(t, out, "line rejected")
	assert.Equal(t, 2, strings.Count(out, "line rejected"))
}

// Package batch checks a file of SQL statements, one statement per line.
//
// Every line is analyzed even when earlier lines fail. Failures are collected
// into the Report rather than returned, so callers decide how to surface them.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

// maxLineSize bounds a single statement line.
const maxLineSize = 1 << 20

// Options controls a batch run.
type Options struct {
	// Workers is the number of lines analyzed concurrently. Values below 1
	// mean 1.
	Workers int
	// SkipBlankLines drops lines made only of spaces instead of reporting
	// them as empty input.
	SkipBlankLines bool
	Logger         *slog.Logger
}

// LineResult is the outcome for one input line.
type LineResult struct {
	Line      int                 `json:"line" yaml:"line"`
	SQL       string              `json:"sql" yaml:"sql"`
	Statement *analyzer.Statement `json:"statement,omitempty" yaml:"statement,omitempty"`
	Err       error               `json:"-" yaml:"-"`
}

// OK reports whether the line parsed.
func (r LineResult) OK() bool { return r.Err == nil }

// Diagnostic formats the failure of r for display.
func (r LineResult) Diagnostic() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf("line %d: %v", r.Line, r.Err)
}

// Report collects the results of one batch run in line order.
type Report struct {
	Source   string       `json:"source" yaml:"source"`
	Started  time.Time    `json:"started" yaml:"started"`
	Finished time.Time    `json:"finished" yaml:"finished"`
	Results  []LineResult `json:"results" yaml:"results"`
}

// Passed returns the number of lines that parsed.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of lines that did not parse.
func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// Diagnostics returns one message per failed line.
func (r *Report) Diagnostics() []string {
	var out []string
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res.Diagnostic())
		}
	}
	return out
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

type sourceLine struct {
	num  int
	text string
}

// Run analyzes every line read from rd. source names the input in the report.
// Only read failures and cancellation are returned as errors.
func Run(ctx context.Context, source string, rd io.Reader, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := max(opts.Workers, 1)

	lines, err := readLines(rd, opts.SkipBlankLines)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	report := &Report{
		Source:  source,
		Started: time.Now().UTC(),
		Results: make([]LineResult, len(lines)),
	}
	logger.Debug("batch started", "source", source, "lines", len(lines), "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ln := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stmt, err := analyzer.Analyze(ln.text)
			report.Results[i] = LineResult{Line: ln.num, SQL: ln.text, Statement: stmt, Err: err}
			if err != nil {
				logger.Debug("line rejected", "line", ln.num, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch run cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch run cancelled: %w", err)
	}

	report.Finished = time.Now().UTC()
	logger.Debug("batch finished",
		"source", source,
		"passed", report.Passed(),
		"failed", report.Failed(),
		"duration", report.Duration(),
	)
	return report, nil
}

// RunFile runs the batch over the file at path.
func RunFile(ctx context.Context, path string, opts Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Run(ctx, path, f, opts)
}

func readLines(rd io.Reader, skipBlank bool) ([]sourceLine, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []sourceLine
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if skipBlank && strings.Trim(text, " ") == "" {
			continue
		}
		lines = append(lines, sourceLine{num: num, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

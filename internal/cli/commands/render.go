package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapscan/internal/batch"
	"github.com/leapstack-labs/leapscan/internal/cli/output"
	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

// diagnosticView is the structured form of one failed statement.
type diagnosticView struct {
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Kind     string `json:"kind" yaml:"kind"`
	Position int    `json:"position" yaml:"position"`
	Message  string `json:"message" yaml:"message"`
}

func newDiagnosticView(line int, err error) diagnosticView {
	view := diagnosticView{Line: line, Position: -1, Message: err.Error()}
	var perr *analyzer.ParseError
	if errors.As(err, &perr) {
		view.Kind = perr.Kind.String()
		view.Position = perr.Pos
	}
	return view
}

// renderStatement writes the clause model of stmt.
func renderStatement(r *output.Renderer, stmt *analyzer.Statement) error {
	if handled, err := r.Structured(stmt); handled {
		return err
	}

	r.Header(1, "Statement")
	pairs := [][2]string{
		{"Columns", strings.Join(stmt.Columns, ", ")},
		{"From", strings.Join(stmt.FromSources, ", ")},
	}
	if stmt.Where != "" {
		pairs = append(pairs, [2]string{"Where", stmt.Where})
	}
	if stmt.GroupBy != "" {
		pairs = append(pairs, [2]string{"Group By", stmt.GroupBy})
	}
	if stmt.OrderBy != "" {
		pairs = append(pairs, [2]string{"Order By", stmt.OrderBy})
	}
	if stmt.Limit != nil {
		pairs = append(pairs, [2]string{"Limit", fmt.Sprintf("%d offset %d (at %d)", stmt.Limit.Count, stmt.Limit.Offset, stmt.Limit.StartPos)})
	}
	r.KeyValues(pairs)

	if len(stmt.Joins) > 0 {
		r.Println("")
		r.Header(2, "Joins")
		rows := make([][]string, 0, len(stmt.Joins))
		for _, j := range stmt.Joins {
			rows = append(rows, []string{output.Humanize(j.Kind.String()), j.Table, j.LeftKey, j.RightKey})
		}
		r.Table([]string{"Kind", "Table", "Left Key", "Right Key"}, rows)
	}
	return nil
}

// renderParseError writes err for sql. Text and markdown modes point at the
// offending position.
func renderParseError(r *output.Renderer, sql string, err error) error {
	if handled, rerr := r.Structured(map[string]diagnosticView{"error": newDiagnosticView(0, err)}); handled {
		return rerr
	}
	r.Error(err.Error())
	if caret := caretLine(sql, err); caret != "" {
		fmt.Fprintln(r.ErrWriter(), "  "+sql)
		fmt.Fprintln(r.ErrWriter(), "  "+caret)
	}
	return nil
}

// caretLine returns a marker under the error position, or "" when the error
// has none.
func caretLine(sql string, err error) string {
	var perr *analyzer.ParseError
	if !errors.As(err, &perr) || perr.Pos < 0 || perr.Pos >= len(sql) {
		return ""
	}
	return strings.Repeat(" ", perr.Pos) + "^"
}

// reportView is the structured form of a batch report.
type reportView struct {
	Source      string           `json:"source" yaml:"source"`
	Total       int              `json:"total" yaml:"total"`
	Passed      int              `json:"passed" yaml:"passed"`
	Failed      int              `json:"failed" yaml:"failed"`
	DurationMS  int64            `json:"duration_ms" yaml:"duration_ms"`
	Diagnostics []diagnosticView `json:"diagnostics" yaml:"diagnostics"`
	RunID       string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

func newReportView(report *batch.Report, runID string) reportView {
	view := reportView{
		Source:      report.Source,
		Total:       len(report.Results),
		Passed:      report.Passed(),
		Failed:      report.Failed(),
		DurationMS:  report.Duration().Milliseconds(),
		Diagnostics: []diagnosticView{},
		RunID:       runID,
	}
	for _, res := range report.Results {
		if !res.OK() {
			view.Diagnostics = append(view.Diagnostics, newDiagnosticView(res.Line, res.Err))
		}
	}
	return view
}

// renderReport writes the outcome of a batch check.
func renderReport(r *output.Renderer, report *batch.Report, runID string) error {
	view := newReportView(report, runID)
	if handled, err := r.Structured(view); handled {
		return err
	}

	r.Header(1, "Check: "+report.Source)
	if len(view.Diagnostics) > 0 {
		rows := make([][]string, 0, len(view.Diagnostics))
		for _, d := range view.Diagnostics {
			rows = append(rows, []string{strconv.Itoa(d.Line), d.Kind, strconv.Itoa(d.Position), d.Message})
		}
		r.Table([]string{"Line", "Kind", "Position", "Message"}, rows)
		r.Println("")
	}

	if view.Failed == 0 {
		r.Success(fmt.Sprintf("%d statements valid", view.Total))
	} else {
		r.Warning(fmt.Sprintf("%d of %d statements invalid", view.Failed, view.Total))
	}
	if runID != "" {
		r.Muted("Recorded run " + runID)
	}
	return nil
}

package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, title string) string {
	level = min(max(level, 1), 6)
	return strings.Repeat("#", level) + " " + title
}

// FormatCodeBlock wraps code in a fenced markdown block.
func FormatCodeBlock(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}

// Humanize turns an enum name such as FULL_OUTER into "Full Outer".
func Humanize(name string) string {
	words := strings.ReplaceAll(strings.ToLower(name), "_", " ")
	return cases.Title(language.English).String(words)
}

// Table writes rows under headers: a boxed table in text mode, a markdown
// table otherwise.
func (r *Renderer) Table(headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeText {
		t.Render()
		return
	}
	t.RenderMarkdown()
}

// KeyValues writes label/value pairs as a two-column table.
func (r *Renderer) KeyValues(pairs [][2]string) {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	r.Table([]string{"Field", "Value"}, rows)
}

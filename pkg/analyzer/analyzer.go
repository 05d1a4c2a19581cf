// Package analyzer recognizes a single SQL SELECT statement and produces its
// clause model.
//
// # Usage
//
//	stmt, err := analyzer.Analyze("SELECT id, name FROM users WHERE id > 10;")
//	if err != nil {
//	    var perr *analyzer.ParseError
//	    if errors.As(err, &perr) {
//	        // perr.Kind, perr.Pos
//	    }
//	}
//
// # Grammar Overview
//
// The analyzer is a lexer-less recursive descent parser working directly on
// the input bytes through a Cursor. Clauses are read once each, in order:
//
//	statement → select_clause from_clause {join_clause}
//	            [where_clause] [group_by] [order_by] [limit_clause] ';'
//
// Only the ASCII space separates tokens. Keywords are upper case and must be
// followed by a space. The WHERE clause is returned as a flat string in which
// every operator carries the offset where its right operand (or, for AND and
// OR, the keyword) starts. See each file for the rules of that section.
package analyzer

// Analyzer parses one statement. An Analyzer is not safe for concurrent use;
// distinct Analyzers share no state.
type Analyzer struct {
	sql  string
	cur  *Cursor
	stmt *Statement
}

// New returns an Analyzer for sql.
func New(sql string) *Analyzer {
	return &Analyzer{sql: sql}
}

// Analyze parses sql in one call.
func Analyze(sql string) (*Statement, error) {
	return New(sql).Analyze()
}

// Analyze scans the statement from the start and returns its clause model, or
// the first error encountered. Repeated calls rescan and return equal values.
func (a *Analyzer) Analyze() (*Statement, error) {
	if isBlank(a.sql) {
		return nil, &ParseError{Kind: KindEmptyInput, Pos: -1}
	}
	if a.sql[len(a.sql)-1] != ';' {
		return nil, &ParseError{Kind: KindMissingTerminator, Pos: -1, Expected: "';'"}
	}

	a.cur = NewCursor(a.sql)
	a.stmt = &Statement{}
	steps := []func() error{
		a.parseSelect,
		a.parseFrom,
		a.parseJoins,
		a.parseWhere,
		a.parseGroupBy,
		a.parseOrderBy,
		a.parseLimit,
		a.parseEnd,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return a.stmt, nil
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			return false
		}
	}
	return true
}

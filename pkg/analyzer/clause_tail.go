package analyzer

import (
	"fmt"
	"strings"
)

// Trailing clauses, each optional:
//
//	where_clause → WHERE expression
//	group_by     → GROUP BY column_ref
//	order_by     → ORDER BY sort_key {',' sort_key} [ASC | DESC]
//	sort_key     → integer | column_ref
//	limit_clause → LIMIT integer [(',' | OFFSET) integer]

// optionalClause skips spaces and matches kw. It returns the keyword offset,
// or false with the cursor untouched when kw is absent.
func (a *Analyzer) optionalClause(kw string) (int, bool) {
	c := a.cur
	mark := c.Checkpoint()
	c.SkipSpaces()
	pos := c.Pos()
	if !c.Probe(kw) {
		c.Restore(mark)
		return 0, false
	}
	c.SkipSpaces()
	return pos, true
}

func (a *Analyzer) parseWhere() error {
	if _, ok := a.optionalClause(kwWhere); !ok {
		return nil
	}
	expr, err := a.parseExpression()
	if err != nil {
		return err
	}
	a.stmt.Where = expr
	return nil
}

func (a *Analyzer) parseGroupBy() error {
	pos, ok := a.optionalClause(kwGroupBy)
	if !ok {
		return nil
	}
	col, err := a.cur.parseColumnRef()
	if err != nil {
		return err
	}
	a.stmt.GroupBy = fmt.Sprintf("GROUP BY %d %s", pos, col)
	return nil
}

func (a *Analyzer) parseOrderBy() error {
	pos, ok := a.optionalClause(kwOrderBy)
	if !ok {
		return nil
	}
	c := a.cur
	var keys []string
	for {
		var (
			key string
			err error
		)
		if isDigit(c.current()) {
			key, err = c.parseNumber()
		} else {
			key, err = c.parseColumnRef()
		}
		if err != nil {
			return err
		}
		keys = append(keys, key)
		if !a.listContinues() {
			break
		}
	}

	out := fmt.Sprintf("ORDER BY %d %s", pos, strings.Join(keys, ", "))
	mark := c.Checkpoint()
	c.SkipSpaces()
	switch {
	case c.matchWord("ASC"):
		out += " ASC"
	case c.matchWord("DESC"):
		out += " DESC"
	default:
		c.Restore(mark)
	}
	a.stmt.OrderBy = out
	return nil
}

func (a *Analyzer) parseLimit() error {
	pos, ok := a.optionalClause(kwLimit)
	if !ok {
		return nil
	}
	c := a.cur
	count, err := c.parseCount()
	if err != nil {
		return err
	}
	limit := &Limit{Count: count, StartPos: pos}

	mark := c.Checkpoint()
	c.SkipSpaces()
	switch {
	case c.current() == ',':
		if err := c.Advance(); err != nil {
			return err
		}
		c.SkipSpaces()
		if limit.Offset, err = c.parseCount(); err != nil {
			return err
		}
	case c.Probe(kwOffset):
		c.SkipSpaces()
		if limit.Offset, err = c.parseCount(); err != nil {
			return err
		}
	default:
		c.Restore(mark)
	}
	a.stmt.Limit = limit
	return nil
}

// parseEnd requires the cursor, after spaces, to rest on the terminating ';'.
func (a *Analyzer) parseEnd() error {
	c := a.cur
	c.SkipSpaces()
	if c.Pos() != c.Len()-1 {
		return errExpectedToken(c.Pos(), c.current(), "end of statement")
	}
	return nil
}

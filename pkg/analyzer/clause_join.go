package analyzer

import "strings"

// JOIN:
//
//	join_clause → join_kind column_ref ON column_ref '=' column_ref
//	join_kind   → LEFT JOIN | RIGHT JOIN | FULL OUTER JOIN | INNER JOIN

var joinForms = []struct {
	keyword string
	kind    JoinKind
}{
	{"LEFT JOIN ", JoinLeft},
	{"RIGHT JOIN ", JoinRight},
	{"FULL OUTER JOIN ", JoinFullOuter},
	{"INNER JOIN ", JoinInner},
}

// parseJoins reads join clauses until the input no longer starts with a join
// keyword. A keyword mismatch ends the loop quietly; anything malformed after
// a matched keyword is an error.
func (a *Analyzer) parseJoins() error {
	c := a.cur
	for {
		mark := c.Checkpoint()
		c.SkipSpaces()
		if !strings.ContainsRune("LRFI", rune(c.current())) {
			c.Restore(mark)
			return nil
		}
		kind, ok := a.probeJoinKind()
		if !ok {
			c.Restore(mark)
			return nil
		}
		join, err := a.parseJoinBody(kind)
		if err != nil {
			return err
		}
		a.stmt.Joins = append(a.stmt.Joins, join)
	}
}

func (a *Analyzer) probeJoinKind() (JoinKind, bool) {
	for _, form := range joinForms {
		if a.cur.Probe(form.keyword) {
			return form.kind, true
		}
	}
	return 0, false
}

func (a *Analyzer) parseJoinBody(kind JoinKind) (Join, error) {
	c := a.cur
	c.SkipSpaces()
	table, err := c.parseColumnRef()
	if err != nil {
		return Join{}, err
	}
	c.SkipSpaces()
	if !c.Probe(kwOn) {
		return Join{}, errExpectedToken(c.Pos(), c.current(), "ON")
	}
	c.SkipSpaces()
	left, err := c.parseColumnRef()
	if err != nil {
		return Join{}, err
	}
	c.SkipSpaces()
	if ch := c.current(); ch != '=' {
		return Join{}, errExpectedToken(c.Pos(), ch, "'='")
	}
	if err := c.Advance(); err != nil {
		return Join{}, err
	}
	c.SkipSpaces()
	right, err := c.parseColumnRef()
	if err != nil {
		return Join{}, err
	}
	return Join{Kind: kind, Table: table, LeftKey: left, RightKey: right}, nil
}

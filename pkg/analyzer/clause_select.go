package analyzer

// SELECT and FROM:
//
//	select_clause → SELECT ('*' ' ' | select_item {',' select_item})
//	select_item   → column_ref [AS name]
//	from_clause   → FROM source {',' source}
//	source        → column_ref | '(' select_clause from_clause ')'

func (a *Analyzer) parseSelect() error {
	c := a.cur
	c.SkipSpaces()
	if err := c.MatchKeyword(kwSelect); err != nil {
		return err
	}
	c.SkipSpaces()

	if c.current() == '*' {
		next, ok := c.PeekAt(1)
		if !ok || next != ' ' {
			return errExpectedToken(c.Pos()+1, next, "space after '*'")
		}
		a.stmt.Columns = append(a.stmt.Columns, "*")
		return c.Advance()
	}

	for {
		col, err := a.parseSelectItem()
		if err != nil {
			return err
		}
		a.stmt.Columns = append(a.stmt.Columns, col)
		if !a.listContinues() {
			return nil
		}
	}
}

func (a *Analyzer) parseSelectItem() (string, error) {
	c := a.cur
	ref, err := c.parseColumnRef()
	if err != nil {
		return "", err
	}
	mark := c.Checkpoint()
	c.SkipSpaces()
	if !c.Probe(kwAs) {
		c.Restore(mark)
		return ref, nil
	}
	c.SkipSpaces()
	alias, err := c.parseName()
	if err != nil {
		return "", err
	}
	return ref + " AS " + alias, nil
}

// listContinues consumes a ',' separator and the spaces around it. It leaves
// the cursor untouched and returns false when no separator follows.
func (a *Analyzer) listContinues() bool {
	c := a.cur
	mark := c.Checkpoint()
	c.SkipSpaces()
	if c.current() != ',' || c.Advance() != nil {
		c.Restore(mark)
		return false
	}
	c.SkipSpaces()
	return true
}

func (a *Analyzer) parseFrom() error {
	c := a.cur
	c.SkipSpaces()
	if err := c.MatchKeyword(kwFrom); err != nil {
		return err
	}
	c.SkipSpaces()

	for {
		if c.current() == '(' {
			if err := a.parseNestedSelect(); err != nil {
				return err
			}
		} else {
			source, err := c.parseColumnRef()
			if err != nil {
				return err
			}
			a.stmt.FromSources = append(a.stmt.FromSources, source)
		}
		if !a.listContinues() {
			return nil
		}
	}
}

// parseNestedSelect re-enters SELECT and FROM for a parenthesized source.
// Its columns and sources land in the enclosing statement.
func (a *Analyzer) parseNestedSelect() error {
	c := a.cur
	if err := c.Advance(); err != nil {
		return err
	}
	if err := a.parseSelect(); err != nil {
		return err
	}
	if err := a.parseFrom(); err != nil {
		return err
	}
	c.SkipSpaces()
	if ch := c.current(); ch != ')' {
		return errExpectedToken(c.Pos(), ch, "')'")
	}
	return c.Advance()
}

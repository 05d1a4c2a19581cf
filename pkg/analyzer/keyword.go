package analyzer

// Keywords are matched byte by byte, case-exact, and include their trailing
// space. A successful match leaves the cursor on that space.
const (
	kwSelect  = "SELECT "
	kwFrom    = "FROM "
	kwWhere   = "WHERE "
	kwGroupBy = "GROUP BY "
	kwOrderBy = "ORDER BY "
	kwLimit   = "LIMIT "
	kwOffset  = "OFFSET "
	kwAs      = "AS "
	kwOn      = "ON "
	kwAnd     = "AND "
	kwOr      = "OR "
	kwNot     = "NOT "
	kwIs      = "IS "
	kwLike    = "LIKE "
	kwBetween = "BETWEEN "
)

// MatchKeyword matches kw at the current offset. On a mismatch the cursor is
// restored to where it started and an InvalidToken error names the first
// mismatching byte and its offset.
func (c *Cursor) MatchKeyword(kw string) error {
	start := c.Checkpoint()
	for i := 0; i < len(kw); i++ {
		ch, err := c.Peek()
		if err != nil {
			c.Restore(start)
			return err
		}
		if ch != kw[i] {
			pos := c.Pos()
			c.Restore(start)
			return errInvalidToken(pos, ch)
		}
		if i == len(kw)-1 {
			break
		}
		if err := c.Advance(); err != nil {
			c.Restore(start)
			return err
		}
	}
	return nil
}

// Probe is the speculative form of MatchKeyword: it reports whether kw matched
// and leaves the cursor untouched when it did not.
func (c *Cursor) Probe(kw string) bool {
	return c.MatchKeyword(kw) == nil
}

// matchWord consumes w when it appears at the cursor as a whole word, that is
// not followed by an identifier character. The cursor ends after the word.
func (c *Cursor) matchWord(w string) bool {
	if !c.hasPrefix(w) {
		return false
	}
	if next, ok := c.PeekAt(len(w)); ok && isIdentChar(next) {
		return false
	}
	start := c.Checkpoint()
	if err := c.advanceBy(len(w)); err != nil {
		c.Restore(start)
		return false
	}
	return true
}

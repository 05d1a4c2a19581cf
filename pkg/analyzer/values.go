package analyzer

import (
	"strconv"
	"strings"
)

// Identifiers and values:
//
//	column_ref → name ['.' name]
//	name       → letter {letter | digit | '_'} | '`' {any except '`'} '`'
//	literal    → string | integer | TRUE | FALSE | NULL
//	string     → '\'' {any} '\''
//	row_value  → '(' literal ',' literal ')'

// parseName parses an unquoted or backtick-quoted identifier. Quotes are
// stripped from the result.
func (c *Cursor) parseName() (string, error) {
	ch := c.current()
	switch {
	case ch == '`':
		return c.parseQuotedName()
	case isLetter(ch):
		name := c.scan(isIdentChar)
		if c.current() == '`' {
			return "", errInvalidToken(c.Pos(), '`')
		}
		return name, nil
	default:
		return "", errInvalidToken(c.Pos(), ch)
	}
}

// parseQuotedName consumes up to the next backtick before the terminator.
// Without one, the quote is reported unclosed at the first byte that could
// not belong to a plain identifier.
func (c *Cursor) parseQuotedName() (string, error) {
	if err := c.Advance(); err != nil {
		return "", err
	}
	end := strings.IndexByte(c.input[c.pos:len(c.input)-1], '`')
	if end < 0 {
		c.scan(isQuotedIdentChar)
		return "", errUnclosedQuote(c.Pos(), c.current())
	}
	if end == 0 {
		return "", errInvalidToken(c.Pos(), '`')
	}
	name := c.input[c.pos : c.pos+end]
	if err := c.advanceBy(end + 1); err != nil {
		return "", err
	}
	return name, nil
}

// parseColumnRef parses name['.'name].
func (c *Cursor) parseColumnRef() (string, error) {
	name, err := c.parseName()
	if err != nil {
		return "", err
	}
	if c.current() != '.' {
		return name, nil
	}
	if err := c.Advance(); err != nil {
		return "", err
	}
	field, err := c.parseName()
	if err != nil {
		return "", err
	}
	return name + "." + field, nil
}

// parseString consumes a single-quoted literal and returns it with its quotes.
func (c *Cursor) parseString() (string, error) {
	start := c.Pos()
	for {
		if err := c.Advance(); err != nil {
			return "", errUnclosedString(start)
		}
		if c.current() == '\'' {
			break
		}
	}
	if err := c.Advance(); err != nil {
		return "", errUnclosedString(start)
	}
	return c.input[start:c.Pos()], nil
}

// parseNumber consumes a digit run. A run glued to an identifier character,
// a dot or a backtick is not a number.
func (c *Cursor) parseNumber() (string, error) {
	start := c.Pos()
	if !isDigit(c.current()) {
		return "", errInvalidNumber(start)
	}
	digits := c.scan(isDigit)
	if next := c.current(); isIdentChar(next) || next == '.' || next == '`' {
		return "", errInvalidNumber(start)
	}
	return digits, nil
}

// parseCount parses a non-negative integer for LIMIT and OFFSET.
func (c *Cursor) parseCount() (int, error) {
	start := c.Pos()
	digits, err := c.parseNumber()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, errInvalidNumber(start)
	}
	return n, nil
}

// parseLiteral parses a string, integer or one of TRUE, FALSE and NULL.
// ok is false when the cursor is not on the start of a literal; nothing is
// consumed in that case.
func (c *Cursor) parseLiteral() (lit string, ok bool, err error) {
	ch := c.current()
	switch {
	case ch == '\'':
		lit, err = c.parseString()
		return lit, true, err
	case isDigit(ch):
		lit, err = c.parseNumber()
		return lit, true, err
	}
	for _, w := range []string{"TRUE", "FALSE", "NULL"} {
		if c.matchWord(w) {
			return w, true, nil
		}
	}
	return "", false, nil
}

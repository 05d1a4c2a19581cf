package analyzer

import "strings"

// Mark is a saved cursor position returned by Checkpoint.
type Mark int

// Cursor owns the statement text and the current read offset. Every parse
// function reads the input through a Cursor; none keeps a position of its own.
type Cursor struct {
	input string
	pos   int
}

// NewCursor returns a cursor positioned at the first byte of input.
func NewCursor(input string) *Cursor {
	return &Cursor{input: input}
}

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the length of the input in bytes.
func (c *Cursor) Len() int { return len(c.input) }

// Peek returns the byte at the current offset.
func (c *Cursor) Peek() (byte, error) {
	if c.pos >= len(c.input) {
		return 0, errOutOfBounds(c.pos)
	}
	return c.input[c.pos], nil
}

// PeekAt returns the byte n positions ahead of the current offset.
// The boolean is false when that offset lies outside the input.
func (c *Cursor) PeekAt(n int) (byte, bool) {
	i := c.pos + n
	if i < 0 || i >= len(c.input) {
		return 0, false
	}
	return c.input[i], true
}

// Advance moves to the next byte. It fails when the cursor already sits on
// the last byte of the input.
func (c *Cursor) Advance() error {
	if c.pos >= len(c.input)-1 {
		return errOutOfBounds(c.pos + 1)
	}
	c.pos++
	return nil
}

// Checkpoint saves the current offset for a later Restore.
func (c *Cursor) Checkpoint() Mark { return Mark(c.pos) }

// Restore rewinds to a mark taken with Checkpoint.
func (c *Cursor) Restore(m Mark) { c.pos = int(m) }

// SkipSpaces moves past a run of ASCII spaces. Tabs and newlines are not
// whitespace.
func (c *Cursor) SkipSpaces() {
	for c.pos < len(c.input)-1 && c.input[c.pos] == ' ' {
		c.pos++
	}
}

// current returns the byte under the cursor, or 0 past the end.
func (c *Cursor) current() byte {
	if c.pos >= len(c.input) {
		return 0
	}
	return c.input[c.pos]
}

func (c *Cursor) hasPrefix(s string) bool {
	return c.pos < len(c.input) && strings.HasPrefix(c.input[c.pos:], s)
}

// advanceBy calls Advance n times.
func (c *Cursor) advanceBy(n int) error {
	for range n {
		if err := c.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// scan consumes bytes while pred holds, never moving past the last byte, and
// returns the consumed text.
func (c *Cursor) scan(pred func(byte) bool) string {
	start := c.pos
	for c.pos < len(c.input)-1 && pred(c.input[c.pos]) {
		c.pos++
	}
	return c.input[start:c.pos]
}

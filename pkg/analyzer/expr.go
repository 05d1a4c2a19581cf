package analyzer

import (
	"fmt"
	"strings"
)

// WHERE expression grammar:
//
//	expression    → and_condition {OR and_condition}
//	and_condition → condition {AND condition}
//	condition     → NOT expression
//	              | '(' expression ')'
//	              | operand [comparator operand
//	                        | IS [NOT] NULL
//	                        | [NOT] IN '(' operand {',' operand} ')'
//	                        | [NOT] LIKE operand
//	                        | [NOT] BETWEEN operand AND operand]
//	operand       → sum {'||' sum}
//	sum           → factor {('+' | '-') factor}
//	factor        → term {('*' | '/') term}
//	term          → literal | column_ref | row_value | '(' operand ')'
//
// Each rule returns its serialized form. Tests carry the offset of the
// right-hand operand; combinators carry the offset of their keyword:
//
//	a = 1 OR b < 2   →   "a EQUAL 4 1 OR 6 b LESS_THAN 13 2"

// comparators is ordered so that two-byte operators win over their prefixes.
var comparators = []struct {
	text string
	name string
}{
	{"<=", "LESS_THAN_OR_EQUAL_TO"},
	{">=", "GREATER_THAN_OR_EQUAL_TO"},
	{"<>", "NOT_EQUAL"},
	{"!=", "NOT_EQUAL"},
	{"=", "EQUAL"},
	{"<", "LESS_THAN"},
	{">", "GREATER_THAN"},
}

func (c *Cursor) comparator() (text, name string, ok bool) {
	for _, op := range comparators {
		if c.hasPrefix(op.text) {
			return op.text, op.name, true
		}
	}
	return "", "", false
}

// continuesOperand reports whether the input at the cursor would extend an
// operand into a larger condition.
func (c *Cursor) continuesOperand() bool {
	if _, _, ok := c.comparator(); ok {
		return true
	}
	switch c.current() {
	case '+', '-', '*', '/':
		return true
	}
	for _, prefix := range []string{"||", kwIs, kwNot, kwLike, kwBetween, "IN ", "IN("} {
		if c.hasPrefix(prefix) {
			return true
		}
	}
	return false
}

func (a *Analyzer) parseExpression() (string, error) {
	c := a.cur
	left, err := a.parseAndCondition()
	if err != nil {
		return "", err
	}
	for {
		mark := c.Checkpoint()
		c.SkipSpaces()
		pos := c.Pos()
		if !c.Probe(kwOr) {
			c.Restore(mark)
			return left, nil
		}
		c.SkipSpaces()
		right, err := a.parseAndCondition()
		if err != nil {
			return "", err
		}
		left = fmt.Sprintf("%s OR %d %s", left, pos, right)
	}
}

func (a *Analyzer) parseAndCondition() (string, error) {
	c := a.cur
	left, err := a.parseCondition()
	if err != nil {
		return "", err
	}
	for {
		mark := c.Checkpoint()
		c.SkipSpaces()
		pos := c.Pos()
		if !c.Probe(kwAnd) {
			c.Restore(mark)
			return left, nil
		}
		c.SkipSpaces()
		right, err := a.parseCondition()
		if err != nil {
			return "", err
		}
		left = fmt.Sprintf("%s AND %d %s", left, pos, right)
	}
}

func (a *Analyzer) parseCondition() (string, error) {
	c := a.cur
	c.SkipSpaces()
	if c.Probe(kwNot) {
		c.SkipSpaces()
		expr, err := a.parseExpression()
		if err != nil {
			return "", err
		}
		return "NOT " + expr, nil
	}
	if c.current() == '(' {
		return a.parseParenCondition()
	}
	return a.parseOperandCondition()
}

// parseParenCondition first reads '(' expression ')'. When that fails, or the
// closing parenthesis is followed by an operator, the parenthesis opened an
// operand instead and the condition is parsed again from the same offset.
func (a *Analyzer) parseParenCondition() (string, error) {
	c := a.cur
	start := c.Checkpoint()
	grouped, groupErr := a.parseGroupedExpression()
	if groupErr == nil {
		after := c.Checkpoint()
		c.SkipSpaces()
		more := c.continuesOperand()
		c.Restore(after)
		if !more {
			return grouped, nil
		}
	}
	c.Restore(start)
	cond, err := a.parseOperandCondition()
	if err != nil {
		if groupErr != nil {
			return "", groupErr
		}
		return "", err
	}
	return cond, nil
}

func (a *Analyzer) parseGroupedExpression() (string, error) {
	c := a.cur
	if err := c.Advance(); err != nil {
		return "", err
	}
	c.SkipSpaces()
	expr, err := a.parseExpression()
	if err != nil {
		return "", err
	}
	c.SkipSpaces()
	if ch := c.current(); ch != ')' {
		return "", errExpectedToken(c.Pos(), ch, "')'")
	}
	if err := c.Advance(); err != nil {
		return "", err
	}
	return "(" + expr + ")", nil
}

func (a *Analyzer) parseOperandCondition() (string, error) {
	c := a.cur
	left, err := a.parseOperand()
	if err != nil {
		return "", err
	}
	mark := c.Checkpoint()
	c.SkipSpaces()

	if text, name, ok := c.comparator(); ok {
		if err := c.advanceBy(len(text)); err != nil {
			return "", err
		}
		c.SkipSpaces()
		pos := c.Pos()
		right, err := a.parseOperand()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %d %s", left, name, pos, right), nil
	}

	if c.Probe(kwIs) {
		c.SkipSpaces()
		not := ""
		if c.Probe(kwNot) {
			not = "NOT "
			c.SkipSpaces()
		}
		pos := c.Pos()
		if !c.matchWord("NULL") {
			return "", errExpectedToken(pos, c.current(), "NULL")
		}
		return fmt.Sprintf("%s IS %s%d NULL", left, not, pos), nil
	}

	not := ""
	if c.Probe(kwNot) {
		not = "NOT "
		c.SkipSpaces()
	}
	switch {
	case c.hasPrefix("IN ") || c.hasPrefix("IN("):
		if err := c.advanceBy(2); err != nil {
			return "", err
		}
		return a.parseInList(left, not)
	case c.Probe(kwLike):
		c.SkipSpaces()
		pos := c.Pos()
		right, err := a.parseOperand()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %sLIKE %d %s", left, not, pos, right), nil
	case c.Probe(kwBetween):
		return a.parseBetween(left, not)
	}

	if not != "" {
		return "", errExpectedToken(c.Pos(), c.current(), "IN, LIKE or BETWEEN")
	}
	c.Restore(mark)
	return left, nil
}

func (a *Analyzer) parseInList(left, not string) (string, error) {
	c := a.cur
	c.SkipSpaces()
	pos := c.Pos()
	if ch := c.current(); ch != '(' {
		return "", errExpectedToken(pos, ch, "'('")
	}
	if err := c.Advance(); err != nil {
		return "", err
	}
	var items []string
	for {
		c.SkipSpaces()
		item, err := a.parseOperand()
		if err != nil {
			return "", err
		}
		items = append(items, item)
		c.SkipSpaces()
		ch := c.current()
		if ch == ')' {
			break
		}
		if ch != ',' {
			return "", errExpectedToken(c.Pos(), ch, "')'")
		}
		if err := c.Advance(); err != nil {
			return "", err
		}
	}
	if err := c.Advance(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %sIN %d (%s)", left, not, pos, strings.Join(items, ", ")), nil
}

func (a *Analyzer) parseBetween(left, not string) (string, error) {
	c := a.cur
	c.SkipSpaces()
	pos := c.Pos()
	low, err := a.parseOperand()
	if err != nil {
		return "", err
	}
	c.SkipSpaces()
	if err := c.MatchKeyword(kwAnd); err != nil {
		return "", errExpectedToken(c.Pos(), c.current(), "AND")
	}
	c.SkipSpaces()
	high, err := a.parseOperand()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %sBETWEEN %d %s %s", left, not, pos, low, high), nil
}

// parseOperand, parseSum and parseFactor share one loop shape: a run of
// operands joined by any of ops, rendered without spaces.
func (a *Analyzer) parseOperand() (string, error) {
	return a.parseChain([]string{"||"}, a.parseSum)
}

func (a *Analyzer) parseSum() (string, error) {
	return a.parseChain([]string{"+", "-"}, a.parseFactor)
}

func (a *Analyzer) parseFactor() (string, error) {
	return a.parseChain([]string{"*", "/"}, a.parseTerm)
}

func (a *Analyzer) parseChain(ops []string, next func() (string, error)) (string, error) {
	c := a.cur
	var b strings.Builder
	left, err := next()
	if err != nil {
		return "", err
	}
	b.WriteString(left)
	for {
		mark := c.Checkpoint()
		c.SkipSpaces()
		op := ""
		for _, candidate := range ops {
			if c.hasPrefix(candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			c.Restore(mark)
			return b.String(), nil
		}
		if err := c.advanceBy(len(op)); err != nil {
			return "", err
		}
		c.SkipSpaces()
		right, err := next()
		if err != nil {
			return "", err
		}
		b.WriteString(op)
		b.WriteString(right)
	}
}

func (a *Analyzer) parseTerm() (string, error) {
	c := a.cur
	if c.current() == '(' {
		return a.parseParenTerm()
	}
	lit, ok, err := c.parseLiteral()
	if err != nil {
		return "", err
	}
	if ok {
		return lit, nil
	}
	return c.parseColumnRef()
}

// parseParenTerm parses a row value '(' literal ',' literal ')' or, when the
// first element is not a literal followed by a comma, '(' operand ')'. The
// parentheses of an operand are not kept.
func (a *Analyzer) parseParenTerm() (string, error) {
	c := a.cur
	start := c.Checkpoint()
	if err := c.Advance(); err != nil {
		return "", err
	}
	c.SkipSpaces()

	first, ok, err := c.parseLiteral()
	if err != nil {
		return "", err
	}
	if ok {
		c.SkipSpaces()
		switch ch := c.current(); {
		case ch == ',':
			return a.finishRowValue(first)
		case ch != ')' && !c.continuesOperand():
			return "", errExpectedToken(c.Pos(), ch, "','")
		}
	}

	c.Restore(start)
	if err := c.Advance(); err != nil {
		return "", err
	}
	c.SkipSpaces()
	inner, err := a.parseOperand()
	if err != nil {
		return "", err
	}
	c.SkipSpaces()
	if ch := c.current(); ch != ')' {
		return "", errExpectedToken(c.Pos(), ch, "')'")
	}
	if err := c.Advance(); err != nil {
		return "", err
	}
	return inner, nil
}

func (a *Analyzer) finishRowValue(first string) (string, error) {
	c := a.cur
	if err := c.Advance(); err != nil {
		return "", err
	}
	c.SkipSpaces()
	second, ok, err := c.parseLiteral()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errInvalidToken(c.Pos(), c.current())
	}
	c.SkipSpaces()
	if ch := c.current(); ch != ')' {
		return "", errExpectedToken(c.Pos(), ch, "')'")
	}
	if err := c.Advance(); err != nil {
		return "", err
	}
	return "(" + first + ", " + second + ")", nil
}

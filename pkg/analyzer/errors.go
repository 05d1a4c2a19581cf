package analyzer

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

// Error kinds reported by the analyzer.
const (
	KindEmptyInput ErrorKind = iota + 1
	KindMissingTerminator
	KindInvalidToken
	KindExpectedToken
	KindUnclosedString
	KindUnclosedQuote
	KindInvalidNumber
	KindOutOfBounds
)

// Sentinel errors matched by errors.Is against a *ParseError of the same kind.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrMissingTerminator = errors.New("missing statement terminator")
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpectedToken     = errors.New("expected token")
	ErrUnclosedString    = errors.New("unclosed string literal")
	ErrUnclosedQuote     = errors.New("unclosed quoted identifier")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrOutOfBounds       = errors.New("position out of bounds")
)

var kindInfo = map[ErrorKind]struct {
	name     string
	sentinel error
}{
	KindEmptyInput:        {"EmptyInput", ErrEmptyInput},
	KindMissingTerminator: {"MissingTerminator", ErrMissingTerminator},
	KindInvalidToken:      {"InvalidToken", ErrInvalidToken},
	KindExpectedToken:     {"ExpectedToken", ErrExpectedToken},
	KindUnclosedString:    {"UnclosedString", ErrUnclosedString},
	KindUnclosedQuote:     {"UnclosedQuote", ErrUnclosedQuote},
	KindInvalidNumber:     {"InvalidNumber", ErrInvalidNumber},
	KindOutOfBounds:       {"OutOfBounds", ErrOutOfBounds},
}

func (k ErrorKind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseError is the single error type produced by the analyzer.
//
// Pos is the absolute byte offset of the offending character, or -1 when the
// error concerns the statement as a whole. For UnclosedString it is the offset
// of the opening quote.
type ParseError struct {
	Kind     ErrorKind
	Pos      int
	Found    byte
	Expected string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "query is empty"
	case KindMissingTerminator:
		return "query must end with ';'"
	case KindInvalidToken:
		return fmt.Sprintf("invalid character %s at position %d", describe(e.Found), e.Pos)
	case KindExpectedToken:
		return fmt.Sprintf("expected %s but found %s at position %d", e.Expected, describe(e.Found), e.Pos)
	case KindUnclosedString:
		return fmt.Sprintf("unclosed string literal starting at position %d", e.Pos)
	case KindUnclosedQuote:
		return fmt.Sprintf("unclosed quoted identifier: unexpected %s at position %d", describe(e.Found), e.Pos)
	case KindInvalidNumber:
		return fmt.Sprintf("invalid number at position %d", e.Pos)
	case KindOutOfBounds:
		return fmt.Sprintf("position %d is out of bounds", e.Pos)
	default:
		return fmt.Sprintf("parse error at position %d", e.Pos)
	}
}

// Unwrap returns the sentinel for the error's kind.
func (e *ParseError) Unwrap() error {
	if info, ok := kindInfo[e.Kind]; ok {
		return info.sentinel
	}
	return nil
}

func describe(b byte) string {
	if b == 0 {
		return "end of input"
	}
	return strconv.QuoteRune(rune(b))
}

func errInvalidToken(pos int, found byte) *ParseError {
	return &ParseError{Kind: KindInvalidToken, Pos: pos, Found: found}
}

func errExpectedToken(pos int, found byte, expected string) *ParseError {
	return &ParseError{Kind: KindExpectedToken, Pos: pos, Found: found, Expected: expected}
}

func errUnclosedString(start int) *ParseError {
	return &ParseError{Kind: KindUnclosedString, Pos: start, Found: '\''}
}

func errUnclosedQuote(pos int, found byte) *ParseError {
	return &ParseError{Kind: KindUnclosedQuote, Pos: pos, Found: found}
}

func errInvalidNumber(start int) *ParseError {
	return &ParseError{Kind: KindInvalidNumber, Pos: start}
}

func errOutOfBounds(pos int) *ParseError {
	return &ParseError{Kind: KindOutOfBounds, Pos: pos}
}

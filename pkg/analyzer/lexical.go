package analyzer

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isIdentChar reports whether b may continue an unquoted identifier.
func isIdentChar(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '_'
}

// isQuotedIdentChar reports whether b may continue a backtick-quoted name
// that has no closing backtick.
func isQuotedIdentChar(b byte) bool {
	return isIdentChar(b) || b == '.'
}

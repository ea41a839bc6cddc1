package rls

import "strings"

// SplitStatements splits a PostgreSQL script on top-level semicolons. It
// understands quoted strings and identifiers, E-prefixed escape strings, line
// and nested block comments and dollar-quoted bodies, so function definitions
// and DO blocks stay intact. Statements made only of comments are dropped.
func SplitStatements(script string) []string {
	var (
		stmts      []string
		start      int
		hasContent bool
	)

	flush := func(end int) {
		if hasContent {
			stmts = append(stmts, strings.TrimSpace(script[start:end]))
		}
		start = end + 1
		hasContent = false
	}

	n := len(script)
	for i := 0; i < n; i++ {
		c := script[i]
		switch {
		case c == ';':
			flush(i)

		case c == '-' && i+1 < n && script[i+1] == '-':
			for i < n && script[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && script[i+1] == '*':
			depth := 1
			i += 2
			for i < n && depth > 0 {
				switch {
				case script[i] == '/' && i+1 < n && script[i+1] == '*':
					depth++
					i += 2
				case script[i] == '*' && i+1 < n && script[i+1] == '/':
					depth--
					i += 2
				default:
					i++
				}
			}
			i--

		case c == '\'':
			hasContent = true
			escapes := i > 0 && (script[i-1] == 'E' || script[i-1] == 'e') && (i < 2 || !isIdentByte(script[i-2]))
			i = skipQuoted(script, i, '\'', escapes)

		case c == '"':
			hasContent = true
			i = skipQuoted(script, i, '"', false)

		case c == '$':
			hasContent = true
			if tag, ok := dollarTag(script, i); ok {
				end := strings.Index(script[i+len(tag):], tag)
				if end < 0 {
					i = n - 1
				} else {
					i += len(tag) + end + len(tag) - 1
				}
			}

		case c == ' ' || c == '\t' || c == '\n' || c == '\r':

		default:
			hasContent = true
		}
	}
	if hasContent {
		stmts = append(stmts, strings.TrimSpace(script[start:]))
	}
	return stmts
}

// skipQuoted returns the index of the closing quote of the literal opened at i.
// A doubled quote is an escaped quote.
func skipQuoted(s string, i int, quote byte, backslash bool) int {
	for i++; i < len(s); i++ {
		switch {
		case backslash && s[i] == '\\':
			i++
		case s[i] == quote:
			if i+1 < len(s) && s[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(s) - 1
}

// dollarTag recognizes $$ and $name$ openers. Positional parameters like $1
// are not tags.
func dollarTag(s string, i int) (string, bool) {
	if i > 0 && isIdentByte(s[i-1]) {
		return "", false
	}
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		if c == '$' {
			return s[i : j+1], true
		}
		if j == i+1 && c >= '0' && c <= '9' {
			return "", false
		}
		if !isIdentByte(c) {
			return "", false
		}
	}
	return "", false
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

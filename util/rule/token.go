package rule

import (
	"bytes"
)

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if IsAlpha(c) || IsDigit(c) {
			continue
		}

		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+',
			'-', '.', '^', '_', '`', '|', '~':
			continue
		}

		return false
	}

	return true
}

// IsValidFieldValue reports whether b only holds field-vchar, SP and HTAB.
// obs-text (0x80-0xFF) is accepted for compatibility.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.5
func IsValidFieldValue(b []byte) bool {
	for _, c := range b {
		if c == SP || c == HTAB {
			continue
		}
		if c < 0x21 || c == DEL {
			return false
		}
	}
	return true
}

// Unquote unquotes token if it was quoted with double quotes.
// If quoted string includes escaped character, it will be un-escaped.
func Unquote(token []byte) []byte {
	quoted := false
	if len(token) >= 2 {
		// Unquote the token if it's wrapped with quotes.
		first, last := 0, len(token)-1
		if token[first] == '"' && token[last] == '"' {
			token = token[first+1 : last]
			quoted = true
		}
	}

	if !quoted {
		return bytes.Clone(token)
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(token)))
	for idx := 0; idx < len(token); idx++ {
		c := token[idx]
		if c == '\\' && idx+1 < len(token) {
			// quoted-pair: keep the escaped octet as-is.
			idx++
			c = token[idx]
		}
		buf.WriteByte(c)
	}

	return buf.Bytes()
}

// Quote wraps s with double quotes unless it is already a valid token.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.4
func Quote(s string) string {
	if IsValidToken(s) {
		return s
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(s)+2))
	buf.WriteByte('"')
	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if c == '"' || c == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')

	return buf.String()
}

// SplitUnquoted splits b around sep, ignoring separators inside quoted strings.
func SplitUnquoted(b []byte, sep byte) [][]byte {
	parts := make([][]byte, 0, 1)
	quoted, escaped := false, false
	start := 0
	for i, c := range b {
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case !quoted && c == sep:
			parts = append(parts, b[start:i])
			start = i + 1
		}
	}
	return append(parts, b[start:])
}

package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes a deliverable name safe to use as a file stem.
// Path separators, colons, and asterisks become dashes; quotes, wildcards,
// redirects, pipes, and control characters are dropped; runs of whitespace
// collapse to one space. Leading dots are stripped so a deliverable can
// never collide with the hidden partial files written beside it.
func SanitizeFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			return '-'
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return -1
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	mapped = strings.Join(strings.Fields(mapped), " ")
	return strings.TrimLeft(mapped, ". ")
}

// SanitizeToken lowercases value into a token of letters, digits, hyphens,
// and underscores. Other runes become underscores, repeated underscores
// collapse, and the result is trimmed of separators. Empty results yield
// "unknown".
func SanitizeToken(value string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

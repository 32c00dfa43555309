package classify

import (
	"strings"
	"unicode"

	"github.com/acarl005/stripansi"
)

// statusPrefixes are cargo progress and location lines, compared lower-cased
var statusPrefixes = []string{"compiling", "checking", "finished", "-->"}

// keywords mark a line as a diagnostic regardless of its length
var keywords = []string{"error", "warning", "note", "help"}

const (
	minProseLen = 15
	maxProseLen = 120
)

// Clean removes ANSI escape sequences from a raw terminal line
func Clean(raw string) string {
	return stripansi.Strip(raw)
}

// Key returns the cache key for a raw line: escape-stripped and trimmed
func Key(raw string) string {
	return strings.TrimSpace(Clean(raw))
}

// ShouldTranslate reports whether an escape-stripped line should be translated.
func ShouldTranslate(clean string) bool {
	t := strings.TrimSpace(clean)
	lower := strings.ToLower(t)

	for _, prefix := range statusPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	// Numeric gutter of a code frame: "10 | let x = 5;"
	if t != "" && t[0] >= '0' && t[0] <= '9' && strings.Contains(t, "|") {
		return false
	}

	if t == "|" {
		return false
	}

	// Only underline and caret markers may follow a gutter pipe
	if i := strings.IndexByte(clean, '|'); i >= 0 {
		after := strings.TrimLeftFunc(clean[i+1:], unicode.IsSpace)
		if !strings.HasPrefix(after, "-") && !strings.HasPrefix(after, "^") {
			return false
		}
	}

	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return len(clean) > minProseLen && len(clean) < maxProseLen && hasLetter(clean)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

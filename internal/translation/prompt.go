package translation

import (
	"fmt"
	"strings"
)

// FailureText replaces the translation when the endpoint did not deliver one
const FailureText = "Translation failed."

// BuildPrompt asks for a plain-text translation of one diagnostic
func BuildPrompt(language, text string) string {
	text = strings.ReplaceAll(text, "```", "")
	text = collapseNewlines(text)
	return fmt.Sprintf("Translate the following English compiler diagnostic message into %s as plain text: %s", language, text)
}

// Normalize turns a multi-line answer into one line: every line is
// right-trimmed and the lines are joined with single spaces.
func Normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

func collapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", " ")
}

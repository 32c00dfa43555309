package cache

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/cargo-check-i18n/internal/classify"
)

// GlossarySeparator splits a glossary line into diagnostic and translation.
// A plain "=" would collide with rustc's "= note:" lines.
const GlossarySeparator = "=>"

// GlossaryEntry is a diagnostic with a hand-written translation
type GlossaryEntry struct {
	Diagnostic  string
	Translation string
}

// ReadGlossary reads hand-written translations from a file.
// Supported lines:
//   - "diagnostic => translation"
//   - blank lines and lines starting with "#" are ignored
//
// Lines without the separator or with an empty side are skipped.
// The diagnostic side may contain ANSI escapes; it is cleaned like a cache key.
func ReadGlossary(filename string) ([]GlossaryEntry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}
	defer f.Close()

	var entries []GlossaryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, GlossarySeparator, 2)
		if len(parts) != 2 {
			continue
		}
		diagnostic := classify.Key(parts[0])
		translated := strings.TrimSpace(parts[1])
		if diagnostic == "" || translated == "" {
			continue
		}

		entries = append(entries, GlossaryEntry{
			Diagnostic:  diagnostic,
			Translation: translated,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}

	return entries, nil
}

// Seed stores glossary entries, replacing any cached translation for the
// same diagnostic, and persists the cache once.
func (c *Cache) Seed(entries []GlossaryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Diagnostic] = e.Translation
	}
	return c.SetMany(m)
}

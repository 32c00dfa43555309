// Package testutil provides fixtures shared by package tests: files on disk,
// fake translation endpoints and fake build processes.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateTestProject creates a project directory, optionally with a cache file
func CreateTestProject(t *testing.T, cacheContent string) string {
	t.Helper()

	dir := t.TempDir()
	CreateTestFile(t, filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"demo\"\nversion = \"0.1.0\"\n"))
	if cacheContent != "" {
		CreateTestFile(t, filepath.Join(dir, ".cargo-check-i18n-cache.json"), []byte(cacheContent))
	}
	return dir
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// SampleCargoOutput is a typical colorless cargo check run: stderr carries
// the diagnostics, stdout is empty
var SampleCargoOutput = strings.Join([]string{
	"    Checking demo v0.1.0 (/tmp/demo)",
	"warning: unused variable: `x`",
	" --> src/main.rs:2:9",
	"  |",
	"2 |     let x = 5;",
	"  |         ^ help: if this is intentional, prefix it with an underscore: `_x`",
	"  |",
	"  = note: `#[warn(unused_variables)]` on by default",
	"",
	"warning: `demo` (bin \"demo\") generated 1 warning",
	"    Finished `dev` profile [unoptimized + debuginfo] target(s) in 0.10s",
}, "\n") + "\n"

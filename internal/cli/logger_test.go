package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Debug("hidden")
	logger.Warn("shown", "key", "value")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("Debug message logged without verbose: %s", output)
	}
	if !strings.Contains(output, "msg=shown") || !strings.Contains(output, "key=value") {
		t.Errorf("Expected warning in output, got: %s", output)
	}
	if !strings.Contains(output, "run_id=") {
		t.Errorf("Expected run_id attribute, got: %s", output)
	}
}

func TestNewLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, true).Debug("details")

	if !strings.Contains(buf.String(), "msg=details") {
		t.Errorf("Expected debug message with verbose, got: %s", buf.String())
	}
}

func TestNewLogger_DistinctRunIDs(t *testing.T) {
	var a, b bytes.Buffer
	NewLogger(&a, false).Warn("x")
	NewLogger(&b, false).Warn("x")

	runID := func(s string) string {
		i := strings.Index(s, "run_id=")
		if i < 0 {
			return ""
		}
		return strings.Fields(s[i:])[0]
	}
	if runID(a.String()) == "" || runID(a.String()) == runID(b.String()) {
		t.Errorf("Expected distinct run ids, got %q and %q", runID(a.String()), runID(b.String()))
	}
}

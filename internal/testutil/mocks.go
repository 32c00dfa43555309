package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"codeberg.org/snonux/cargo-check-i18n/internal/supervisor"
)

// MockAPI is a fake OpenAI-style chat completions endpoint
type MockAPI struct {
	Server *httptest.Server

	// Status, when non-zero, is returned instead of a translation
	Status atomic.Int32

	calls atomic.Int32
	mu    sync.Mutex
	seen  []string
}

// NewMockAPI starts an endpoint that answers every prompt with "译:" plus
// the text after the last ": " of the prompt
func NewMockAPI(t *testing.T) *MockAPI {
	t.Helper()

	m := &MockAPI{}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	m.calls.Add(1)

	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &req); err != nil || len(req.Messages) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	prompt := req.Messages[0].Content

	m.mu.Lock()
	m.seen = append(m.seen, prompt)
	m.mu.Unlock()

	if status := m.Status.Load(); status != 0 {
		http.Error(w, "unavailable", int(status))
		return
	}

	text := prompt
	if i := strings.LastIndex(prompt, "plain text: "); i >= 0 {
		text = prompt[i+len("plain text: "):]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": "译:" + text}},
		},
	})
}

// URL returns the chat completions URL of the endpoint
func (m *MockAPI) URL() string {
	return m.Server.URL + "/v1/chat/completions"
}

// Calls returns how many requests reached the endpoint
func (m *MockAPI) Calls() int {
	return int(m.calls.Load())
}

// Prompts returns the prompts received so far
func (m *MockAPI) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.seen...)
}

// MockTranslator mocks the translation endpoint client
type MockTranslator struct {
	mu           sync.Mutex
	Translations map[string]string
	Errors       map[string]error
	Calls        []string
}

// Translate returns the configured translation or error for prompt
func (m *MockTranslator) Translate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, prompt)

	if err, ok := m.Errors[prompt]; ok {
		return "", err
	}

	if translation, ok := m.Translations[prompt]; ok {
		return translation, nil
	}

	// Default mock translation
	return fmt.Sprintf("mock translation of %s", prompt), nil
}

// CallCount returns the number of Translate calls
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockProcess is a finished build process with canned output
type MockProcess struct {
	StdoutData string
	StderrData string
	ExitCode   int

	stdout io.Reader
	stderr io.Reader
}

func (p *MockProcess) Stdout() io.Reader {
	if p.stdout == nil {
		p.stdout = strings.NewReader(p.StdoutData)
	}
	return p.stdout
}

func (p *MockProcess) Stderr() io.Reader {
	if p.stderr == nil {
		p.stderr = strings.NewReader(p.StderrData)
	}
	return p.stderr
}

func (p *MockProcess) Wait() (int, error) {
	return p.ExitCode, nil
}

// MockSpawner hands out a MockProcess, or fails with Err
type MockSpawner struct {
	Process *MockProcess
	Err     error
	Spawned int
}

// Spawn implements supervisor.Spawner
func (s *MockSpawner) Spawn(ctx context.Context) (supervisor.Process, error) {
	s.Spawned++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Process, nil
}

package translation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/cargo-check-i18n/internal/config"
	"codeberg.org/snonux/cargo-check-i18n/internal/jsonpath"
	"codeberg.org/snonux/cargo-check-i18n/internal/metrics"
)

type capturedRequest struct {
	method string
	header http.Header
	body   []byte
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.header = r.Header.Clone()
		captured.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func testConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.APIURL = url
	cfg.APIKey = "test-key"
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestTranslate_DefaultBody(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":"警告：未使用的变量"}}]}`)
	m := metrics.New()
	client := NewClient(testConfig(srv.URL), WithMetrics(m))

	got, err := client.Translate(context.Background(), "Translate this")
	require.NoError(t, err)
	assert.Equal(t, "警告：未使用的变量", got)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	assert.Equal(t, "Bearer test-key", captured.header.Get("Authorization"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured.body, &body))
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)
	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "Translate this", msg["content"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues(metrics.OutcomeOK)))
}

func TestTranslate_NoAPIKeyOmitsAuthorization(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	cfg := testConfig(srv.URL)
	cfg.APIKey = ""

	_, err := NewClient(cfg).Translate(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, captured.header.Get("Authorization"))
}

func TestTranslate_Template(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK, `{"message":{"content":"hallo"}}`)
	cfg := testConfig(srv.URL)
	cfg.Model = "llama3"
	cfg.Temperature = 0.5
	cfg.RequestBodyTemplate = `{"model":"{{model}}","stream":false,"messages":[{"role":"user","content":"{{prompt}}"}],"options":{"temperature":{{temperature}}}}`
	cfg.ResponsePath = "message.content"

	prompt := "error: expected `;`, found \"x\"\nnext line"
	got, err := NewClient(cfg).Translate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "hallo", got)

	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
		Options struct {
			Temperature float64 `json:"temperature"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &body), "body: %s", captured.body)
	assert.Equal(t, "llama3", body.Model)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, prompt, body.Messages[0].Content)
	assert.InDelta(t, 0.5, body.Options.Temperature, 1e-9)
}

func TestTranslate_StatusError(t *testing.T) {
	srv, _ := newServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
	m := metrics.New()

	got, err := NewClient(testConfig(srv.URL), WithMetrics(m)).Translate(context.Background(), "p")
	require.Error(t, err)
	assert.Empty(t, got)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, srv.URL, se.Endpoint)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues(metrics.OutcomeHTTPError)))
}

func TestTranslate_MissingField(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"choices":[]}`)

	_, err := NewClient(testConfig(srv.URL)).Translate(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jsonpath.ErrNotFound), "got %v", err)
}

func TestTranslate_NonStringField(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":42}}]}`)

	_, err := NewClient(testConfig(srv.URL)).Translate(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jsonpath.ErrNotString), "got %v", err)
}

func TestTranslate_MalformedJSON(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `<html>gateway</html>`)

	_, err := NewClient(testConfig(srv.URL)).Translate(context.Background(), "p")
	assert.Error(t, err)
}

func TestTranslate_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := metrics.New()
	_, err := NewClient(testConfig(url), WithMetrics(m)).Translate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues(metrics.OutcomeTransportError)))
}

func TestRenderTemplate(t *testing.T) {
	got := RenderTemplate(`{"m":"{{model}}","p":"{{prompt}}","t":{{temperature}}}`, "gpt", `say "hi" <now>`, 0.2)
	assert.Equal(t, `{"m":"gpt","p":"say \"hi\" <now>","t":0.2}`, got)
	assert.True(t, json.Valid([]byte(got)))
}

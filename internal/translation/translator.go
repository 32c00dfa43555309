package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"codeberg.org/snonux/cargo-check-i18n/internal/config"
	"codeberg.org/snonux/cargo-check-i18n/internal/jsonpath"
	"codeberg.org/snonux/cargo-check-i18n/internal/metrics"
)

// Translator turns a prompt into translated text
type Translator interface {
	Translate(ctx context.Context, prompt string) (string, error)
}

// StatusError is returned when the endpoint answers with a non-2xx status
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request to %s failed with status %d", e.Endpoint, e.StatusCode)
}

// Client talks to the configured translation endpoint
type Client struct {
	cfg     *config.Config
	http    *resty.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for request failures
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the endpoint described by cfg
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   resty.New().SetTimeout(cfg.Timeout),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate sends prompt to the endpoint and extracts the answer
func (c *Client) Translate(ctx context.Context, prompt string) (string, error) {
	body, err := c.buildBody(prompt)
	if err != nil {
		return "", err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if c.cfg.APIKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := req.Post(c.cfg.APIURL)
	if err != nil {
		c.metrics.Request(metrics.OutcomeTransportError)
		return "", fmt.Errorf("API request to %s: %w", c.cfg.APIURL, err)
	}

	if !resp.IsSuccess() {
		c.metrics.Request(metrics.OutcomeHTTPError)
		c.logger.Warn("API request failed", "endpoint", c.cfg.APIURL, "status", resp.StatusCode())
		return "", &StatusError{Endpoint: c.cfg.APIURL, StatusCode: resp.StatusCode()}
	}

	text, err := jsonpath.ExtractBytes(resp.Body(), c.cfg.ResponsePath)
	if err != nil {
		c.metrics.Request(metrics.OutcomeBadResponse)
		return "", fmt.Errorf("unexpected response from %s: %w", c.cfg.APIURL, err)
	}

	c.metrics.Request(metrics.OutcomeOK)
	return text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// buildBody renders the configured template, or the default chat request
func (c *Client) buildBody(prompt string) ([]byte, error) {
	if c.cfg.RequestBodyTemplate != "" {
		return []byte(RenderTemplate(c.cfg.RequestBodyTemplate, c.cfg.Model, prompt, c.cfg.Temperature)), nil
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return body, nil
}

// RenderTemplate substitutes {{model}}, {{prompt}} and {{temperature}}.
// Model and prompt are JSON-string escaped without the surrounding quotes,
// temperature is inserted as a bare number.
func RenderTemplate(tmpl, model, prompt string, temperature float64) string {
	r := strings.NewReplacer(
		"{{model}}", escapeJSON(model),
		"{{prompt}}", escapeJSON(prompt),
		"{{temperature}}", strconv.FormatFloat(temperature, 'f', -1, 64),
	)
	return r.Replace(tmpl)
}

func escapeJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail
	_ = enc.Encode(s)
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

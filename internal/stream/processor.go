// Package stream annotates build output line by line. Each Processor reads
// one stream; several may share a Resolver and a LineWriter.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"codeberg.org/snonux/cargo-check-i18n/internal"
	"codeberg.org/snonux/cargo-check-i18n/internal/classify"
	"codeberg.org/snonux/cargo-check-i18n/internal/metrics"
	"codeberg.org/snonux/cargo-check-i18n/internal/translation"
)

// Resolver returns the translation for a cache key. On failure it returns
// the text to show instead, along with the error.
type Resolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// Processor classifies and annotates the lines of one stream
type Processor struct {
	resolver Resolver
	out      *LineWriter
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger for translation failures
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithMetrics counts lines read and translated
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// New creates a Processor writing to out
func New(resolver Resolver, out *LineWriter, opts ...Option) *Processor {
	p := &Processor{
		resolver: resolver,
		out:      out,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes r until EOF or until ctx is cancelled. name labels the
// stream in logs and metrics, e.g. "stdout".
func (p *Processor) Run(ctx context.Context, name string, r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read %s: %w", name, readErr)
		}
		// A final line without a newline is still a line
		if line != "" {
			p.metrics.LineRead(name)
			raw := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if err := p.out.WriteLine(p.ProcessLine(ctx, raw)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if readErr != nil {
			return nil
		}
	}
}

// ProcessLine returns raw unchanged, or raw followed by its translation in
// parentheses when the line carries diagnostic prose.
func (p *Processor) ProcessLine(ctx context.Context, raw string) string {
	clean := classify.Clean(raw)
	if !classify.ShouldTranslate(clean) {
		return raw
	}

	key := strings.TrimSpace(clean)
	text, err := p.resolver.Resolve(ctx, key)
	if err != nil {
		p.metrics.Failure()
		p.logger.Warn("translation failed", "key", internal.ShortHash(key), "error", err)
		if text == "" {
			text = translation.FailureText
		}
	}
	p.metrics.LineTranslated()

	return raw + " (" + text + ")"
}

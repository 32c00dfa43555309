package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/cargo-check-i18n/internal/cache"
	"codeberg.org/snonux/cargo-check-i18n/internal/config"
	"codeberg.org/snonux/cargo-check-i18n/internal/metrics"
	"codeberg.org/snonux/cargo-check-i18n/internal/ratelimit"
	"codeberg.org/snonux/cargo-check-i18n/internal/stream"
	"codeberg.org/snonux/cargo-check-i18n/internal/supervisor"
	"codeberg.org/snonux/cargo-check-i18n/internal/translation"
)

// Processor handles one run of the pipeline
type Processor struct {
	cfg        *config.Config
	cache      *cache.Cache
	limiter    *ratelimit.Limiter
	translator translation.Translator
	out        *stream.LineWriter
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger passed to every component
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithMetrics sets the run's counters
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithOutput replaces stdout as the consolidated output
func WithOutput(w io.Writer) Option {
	return func(p *Processor) {
		p.out = stream.NewLineWriter(w)
	}
}

// WithTranslator replaces the HTTP client, e.g. in tests
func WithTranslator(t translation.Translator) Option {
	return func(p *Processor) {
		p.translator = t
	}
}

// NewProcessor creates a pipeline for cfg backed by c
func NewProcessor(cfg *config.Config, c *cache.Cache, opts ...Option) *Processor {
	p := &Processor{
		cfg:     cfg,
		cache:   c,
		limiter: ratelimit.New(cfg.RateLimit),
		out:     stream.NewLineWriter(os.Stdout),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.translator == nil {
		p.translator = translation.NewClient(cfg,
			translation.WithLogger(p.logger),
			translation.WithMetrics(p.metrics),
		)
	}
	if cfg.BreakerFailures > 0 {
		p.translator = translation.NewBreaker(p.translator, translation.BreakerSettings{
			ConsecutiveFailures: uint32(cfg.BreakerFailures),
			Logger:              p.logger,
		})
	}

	return p
}

// Resolve returns the translation of a cache key, asking the endpoint on a
// miss. Endpoint requests are spaced by the shared rate limiter.
func (p *Processor) Resolve(ctx context.Context, key string) (string, error) {
	return p.cache.Resolve(ctx, key, func(ctx context.Context) (string, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return p.translator.Translate(ctx, translation.BuildPrompt(p.cfg.Language, key))
	})
}

// Run starts the build tool and annotates both of its output streams until
// they end. The returned exit code is the build tool's, even when writing
// the output fails. A spawn failure returns exit code 1 before any output
// is read.
func (p *Processor) Run(ctx context.Context, spawner supervisor.Spawner) (int, error) {
	if s, ok := spawner.(fmt.Stringer); ok {
		p.logger.Debug("starting build tool", "command", s.String())
	}

	proc, err := spawner.Spawn(ctx)
	if err != nil {
		return 1, err
	}

	streams := []struct {
		name string
		r    io.Reader
	}{
		{"stdout", proc.Stdout()},
		{"stderr", proc.Stderr()},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range streams {
		s := s
		g.Go(func() error {
			return p.runStream(gctx, s.name, s.r)
		})
	}
	streamErr := g.Wait()

	code, err := proc.Wait()
	if err != nil {
		return code, err
	}

	// Output problems, e.g. a closed pipe, never replace the build tool's status
	if streamErr != nil && !errors.Is(streamErr, context.Canceled) {
		p.logger.Warn("output stream failed", "error", streamErr)
	}
	return code, nil
}

// Replay annotates an already captured build log
func (p *Processor) Replay(ctx context.Context, name string, r io.Reader) error {
	return p.runStream(ctx, name, r)
}

// runStream processes r; if processing stops early the rest of r is
// discarded so the build tool never blocks on a full pipe
func (p *Processor) runStream(ctx context.Context, name string, r io.Reader) error {
	sp := stream.New(p, p.out, stream.WithLogger(p.logger), stream.WithMetrics(p.metrics))
	err := sp.Run(ctx, name, r)
	if err != nil {
		p.logger.Debug("stream stopped early", "stream", name, "error", err)
		_, _ = io.Copy(io.Discard, r)
	}
	return err
}

// Limiter exposes the shared rate limiter
func (p *Processor) Limiter() *ratelimit.Limiter {
	return p.limiter
}

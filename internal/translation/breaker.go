package translation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker defaults
const (
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
)

// Breaker fails fast once the wrapped Translator has failed repeatedly
type Breaker struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

// BreakerSettings tunes when the breaker opens and how long it stays open
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	Logger              *slog.Logger
}

// NewBreaker wraps next in a circuit breaker
func NewBreaker(next Translator, s BreakerSettings) *Breaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = DefaultBreakerFailures
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = DefaultBreakerTimeout
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "translation",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("translation circuit breaker changed state", "from", from.String(), "to", to.String())
		},
		// Our own cancellation says nothing about the endpoint's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{next: next, cb: cb}
}

// Translate forwards to the wrapped Translator unless the breaker is open
func (b *Breaker) Translate(ctx context.Context, prompt string) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// State reports the breaker state, e.g. "closed" or "open"
func (b *Breaker) State() string {
	return b.cb.State().String()
}

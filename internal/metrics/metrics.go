// Package metrics counts what a run did: lines read, lines translated, cache
// hits and misses, and requests sent to the translation endpoint. Collectors
// live on a private registry so tests and repeated runs never collide.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "cargo_check_i18n"

// Request outcomes reported by the translation client
const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeBadResponse    = "bad_response"
)

// Metrics contains all counters for one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LinesRead           *prometheus.CounterVec
	LinesTranslated     prometheus.Counter
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	APIRequests         *prometheus.CounterVec
	TranslationFailures prometheus.Counter
}

// New creates and registers the run's collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		LinesRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "lines_read_total",
				Help:      "Total number of lines read from the build tool",
			},
			[]string{"stream"},
		),

		LinesTranslated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "lines_translated_total",
				Help:      "Total number of lines emitted with a translation annotation",
			},
		),

		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache lookups answered from the cache",
			},
		),

		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache lookups that required a translation request",
			},
		),

		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of requests sent to the translation endpoint",
			},
			[]string{"outcome"},
		),

		TranslationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "translation",
				Name:      "failures_total",
				Help:      "Total number of lines annotated with the failure text",
			},
		),
	}

	m.registry.MustRegister(
		m.LinesRead,
		m.LinesTranslated,
		m.CacheHits,
		m.CacheMisses,
		m.APIRequests,
		m.TranslationFailures,
	)

	return m
}

// LineRead counts one line from the named stream
func (m *Metrics) LineRead(stream string) {
	if m == nil {
		return
	}
	m.LinesRead.WithLabelValues(stream).Inc()
}

// LineTranslated counts one annotated line
func (m *Metrics) LineTranslated() {
	if m == nil {
		return
	}
	m.LinesTranslated.Inc()
}

// CacheHit counts one cache hit
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// CacheMiss counts one cache miss
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// Request counts one endpoint request with its outcome
func (m *Metrics) Request(outcome string) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(outcome).Inc()
}

// Failure counts one line annotated with the failure text
func (m *Metrics) Failure() {
	if m == nil {
		return
	}
	m.TranslationFailures.Inc()
}

// WriteSummary prints every non-empty series as "name{labels} value"
func (m *Metrics) WriteSummary(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			fmt.Fprintf(w, "%s%s %g\n", family.GetName(), formatLabels(metric.GetLabel()), metric.GetCounter().GetValue())
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	s := "{"
	for i, l := range labels {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return s + "}"
}

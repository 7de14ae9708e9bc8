// Package metrics defines the Prometheus collectors for the babble service
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal *prometheus.CounterVec
	GenerationsTotal  *prometheus.CounterVec
	GenerationLength  prometheus.Histogram
	ReloadsTotal      *prometheus.CounterVec
	CorpusLines       prometheus.Gauge
	CorpusTokens      prometheus.Gauge
	AnswersGatedTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "babble_generations_total",
				Help: "Total generation runs by operation (babble, ask, auto_answer) and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		GenerationLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "babble_generation_length_words",
				Help:    "Length in words of generated text.",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "babble_reloads_total",
				Help: "Total corpus reloads by status.",
			},
			[]string{"status"},
		),
		CorpusLines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "babble_corpus_lines",
				Help: "Number of lines in the currently loaded corpus.",
			},
		),
		CorpusTokens: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "babble_corpus_tokens",
				Help: "Number of tokens in the currently loaded corpus.",
			},
		),
		AnswersGatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "babble_answers_gated_total",
				Help: "Autonomous answers withheld, by gate (cooldown, probability, no_match).",
			},
			[]string{"gate"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.GenerationsTotal,
		m.GenerationLength,
		m.ReloadsTotal,
		m.CorpusLines,
		m.CorpusTokens,
		m.AnswersGatedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

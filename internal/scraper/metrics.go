package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scrape loop. A nil *Metrics
// is valid and turns every method into a no-op.
type Metrics struct {
	Registry       *prometheus.Registry
	AttemptsTotal  prometheus.Counter
	BlockedTotal   prometheus.Counter
	RetriesTotal   prometheus.Counter
	ItemsTotal     prometheus.Counter
	ScrapeDuration prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_scrape_attempts_total",
		Help: "Total scrape attempts started.",
	})
	blocked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_scrape_blocked_total",
		Help: "Total attempts classified as blocked by anti-bot protection.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_scrape_retries_total",
		Help: "Total backoff retries scheduled after blocked attempts.",
	})
	items := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_items_extracted_total",
		Help: "Total product records extracted from result pages.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricewatch_scrape_duration_seconds",
		Help:    "End-to-end duration of a scrape invocation including retries.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	registry.MustRegister(attempts, blocked, retries, items, duration)

	return &Metrics{
		Registry:       registry,
		AttemptsTotal:  attempts,
		BlockedTotal:   blocked,
		RetriesTotal:   retries,
		ItemsTotal:     items,
		ScrapeDuration: duration,
	}
}

func (m *Metrics) IncAttempts() {
	if m == nil {
		return
	}
	m.AttemptsTotal.Inc()
}

func (m *Metrics) IncBlocked() {
	if m == nil {
		return
	}
	m.BlockedTotal.Inc()
}

func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) AddItems(n int) {
	if m == nil {
		return
	}
	m.ItemsTotal.Add(float64(n))
}

func (m *Metrics) ObserveScrapeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}

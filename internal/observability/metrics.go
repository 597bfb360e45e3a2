package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	upstreamRequestsTotal *prometheus.CounterVec
	upstreamDuration      *prometheus.HistogramVec
	summariesTotal        *prometheus.CounterVec
	summaryDuration       *prometheus.HistogramVec
	categoryFailures      *prometheus.CounterVec
}

// Summary outcomes, by how many categories fell back to the error marker.
const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeFailed   = "failed"
)

// summaryBuckets spans one fast category call up to every category running
// into its timeout back to back.
var summaryBuckets = []float64{1, 2.5, 5, 10, 20, 40, 60, 120, 300}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earningscall_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "earningscall_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		upstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earningscall_upstream_requests_total",
				Help: "Total upstream LLM API requests.",
			},
			[]string{"endpoint", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "earningscall_upstream_request_duration_seconds",
				Help:    "Upstream request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		summariesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earningscall_summaries_total",
				Help: "Transcript summaries produced, by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		summaryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "earningscall_summary_duration_seconds",
				Help:    "Wall time to summarize one transcript across all categories.",
				Buckets: summaryBuckets,
			},
			[]string{"provider", "outcome"},
		),
		categoryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earningscall_category_failures_total",
				Help: "Number of category summaries replaced with the error marker.",
			},
			[]string{"provider", "category"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.upstreamRequestsTotal,
		m.upstreamDuration,
		m.summariesTotal,
		m.summaryDuration,
		m.categoryFailures,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	if method == "" {
		method = "UNKNOWN"
	}
	statusLabel := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveUpstream(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	statusLabel := strconv.Itoa(status)
	m.upstreamRequestsTotal.WithLabelValues(endpoint, statusLabel).Inc()
	m.upstreamDuration.WithLabelValues(endpoint, statusLabel).Observe(duration.Seconds())
}

// SummaryObserver records summarizer results against a single provider.
type SummaryObserver struct {
	metrics  *Metrics
	provider string
}

func (m *Metrics) ForProvider(provider string) *SummaryObserver {
	if provider == "" {
		provider = "unknown"
	}
	return &SummaryObserver{metrics: m, provider: provider}
}

func (o *SummaryObserver) IncCategoryFailure(category string) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.categoryFailures.WithLabelValues(o.provider, category).Inc()
}

func (o *SummaryObserver) ObserveSummary(duration time.Duration, failed, total int) {
	if o == nil || o.metrics == nil {
		return
	}
	outcome := SummaryOutcome(failed, total)
	o.metrics.summariesTotal.WithLabelValues(o.provider, outcome).Inc()
	o.metrics.summaryDuration.WithLabelValues(o.provider, outcome).Observe(duration.Seconds())
}

func SummaryOutcome(failed, total int) string {
	switch {
	case failed <= 0:
		return OutcomeComplete
	case failed < total:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

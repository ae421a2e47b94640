// Package metrics exposes scraper activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slipstream/metascrape/internal/scraper"
)

const namespace = "metascrape"

// Metrics records sub-request, load and search activity. It implements
// scraper.Recorder.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Loads           *prometheus.CounterVec
	LoadDuration    *prometheus.HistogramVec
	SearchPages     *prometheus.CounterVec
}

var _ scraper.Recorder = (*Metrics)(nil)

// New creates and registers scraper metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "requests_total",
			Help:      "Provider sub-requests by outcome.",
		}, []string{"provider", "kind", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "request_duration_seconds",
			Help:      "Duration of provider sub-requests including parsing.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "kind"}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "loads_total",
			Help:      "Completed entity loads by media type and outcome.",
		}, []string{"provider", "media", "result"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "load_duration_seconds",
			Help:      "Wall time from load start until the last sub-request finished.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider", "media"}),
		SearchPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "pages_total",
			Help:      "Search result pages fetched by outcome.",
		}, []string{"provider", "result"}),
	}

	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.Loads,
		m.LoadDuration,
		m.SearchPages,
	)

	return m
}

func (m *Metrics) ObserveRequest(provider string, kind scraper.RequestKind, errType scraper.ErrorType, d time.Duration) {
	m.Requests.WithLabelValues(provider, kind.String(), outcome(errType)).Inc()
	m.RequestDuration.WithLabelValues(provider, kind.String()).Observe(d.Seconds())
}

func (m *Metrics) ObserveLoad(provider string, media scraper.MediaType, failed int, d time.Duration) {
	result := "ok"
	if failed > 0 {
		result = "partial"
	}
	m.Loads.WithLabelValues(provider, string(media), result).Inc()
	m.LoadDuration.WithLabelValues(provider, string(media)).Observe(d.Seconds())
}

func (m *Metrics) ObserveSearchPage(provider string, errType scraper.ErrorType) {
	m.SearchPages.WithLabelValues(provider, outcome(errType)).Inc()
}

// outcome is "ok" for ErrorNone and the error type name otherwise.
func outcome(t scraper.ErrorType) string {
	if t == scraper.ErrorNone {
		return "ok"
	}
	return t.String()
}

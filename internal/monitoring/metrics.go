package monitoring

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the search pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchesTotal   *prometheus.CounterVec
	SearchesTotal  *prometheus.CounterVec
	DetailFailures prometheus.Counter
	RequestsTotal  *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsearch_fetches_total",
			Help: "Documents fetched from the job board",
		}, []string{"phase", "result"}), // phase: listing|detail, result: ok|timeout|error
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsearch_searches_total",
			Help: "Enrichment runs by outcome",
		}, []string{"outcome"}),
		DetailFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobsearch_detail_failures_total",
			Help: "Listings that kept a placeholder description",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsearch_queue_requests_total",
			Help: "Queued search requests handled by the worker",
		}, []string{"result"}),
	}
}

// timeoutError is satisfied by *fetcher.FetchError
type timeoutError interface {
	IsTimeout() bool
}

func (m *Metrics) IncFetch(phase string, err error) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(phase, fetchResult(err)).Inc()
}

func fetchResult(err error) string {
	if err == nil {
		return "ok"
	}
	var te timeoutError
	if errors.As(err, &te) && te.IsTimeout() {
		return "timeout"
	}
	return "error"
}

func (m *Metrics) IncSearch(outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDetailFailure() {
	if m == nil {
		return
	}
	m.DetailFailures.Inc()
}

func (m *Metrics) IncRequest(result string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(result).Inc()
}

// RegisterQueueDepth exposes the pending request count, read on every
// scrape. A failed read reports NaN.
func RegisterQueueDepth(reg prometheus.Registerer, length func(ctx context.Context) (int64, error)) prometheus.GaugeFunc {
	return promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "jobsearch_queue_depth",
		Help: "Search requests waiting in the request queue",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := length(ctx)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	})
}

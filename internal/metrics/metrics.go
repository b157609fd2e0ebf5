package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checkout outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors exported by the API.
type Metrics struct {
	registry *prometheus.Registry

	checkouts       *prometheus.CounterVec
	orderValue      prometheus.Histogram
	eventsPublished *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retail_checkouts_total",
			Help: "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "retail_order_value",
			Help:    "Total amount of placed orders.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retail_events_published_total",
			Help: "Customer events handed to the broker by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retail_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "retail_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checkouts,
		m.orderValue,
		m.eventsPublished,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCheckout records one checkout attempt. amount is ignored unless
// the outcome is a success.
func (m *Metrics) ObserveCheckout(outcome string, amount float64) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.orderValue.Observe(amount)
	}
}

// ObservePublish records the result of handing an event to the broker.
func (m *Metrics) ObservePublish(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}

// ObserveHTTP records a finished request.
func (m *Metrics) ObserveHTTP(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

type publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// PublisherFunc adapts a function to the broker publisher shape.
type PublisherFunc func(ctx context.Context, key string, payload any) error

func (f PublisherFunc) Publish(ctx context.Context, key string, payload any) error {
	return f(ctx, key, payload)
}

// InstrumentPublisher counts the results of every Publish call made through
// the returned publisher.
func (m *Metrics) InstrumentPublisher(p publisher) PublisherFunc {
	return func(ctx context.Context, key string, payload any) error {
		err := p.Publish(ctx, key, payload)
		m.ObservePublish(err)
		return err
	}
}

// Package metrics exposes billing counters in the Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics holds the collectors recorded by the billing service.
type Metrics struct {
	registry *prometheus.Registry

	BillsSaved      prometheus.Counter
	BillsFailed     *prometheus.CounterVec
	RevenueTotal    prometheus.Counter
	BillTotal       prometheus.Histogram
	PublishFailures prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New registers a fresh set of collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		BillsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "bills_saved_total",
			Help:      "Bills written to the ledger.",
		}),
		BillsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "bills_failed_total",
			Help:      "Bill saves rejected, by reason.",
		}, []string{"reason"}),
		RevenueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "revenue_total",
			Help:      "Sum of saved bill totals in the restaurant currency.",
		}),
		BillTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billing",
			Name:      "bill_total",
			Help:      "Distribution of saved bill totals.",
			Buckets:   []float64{250, 500, 1000, 2500, 5000, 10000, 25000},
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "publish_failures_total",
			Help:      "Bill events that could not be published.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billing",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.BillsSaved,
		m.BillsFailed,
		m.RevenueTotal,
		m.BillTotal,
		m.PublishFailures,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveBill records a saved bill.
func (m *Metrics) ObserveBill(total decimal.Decimal) {
	f := total.InexactFloat64()
	m.BillsSaved.Inc()
	m.RevenueTotal.Add(f)
	m.BillTotal.Observe(f)
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "home_energy_"

// Metrics holds the collectors of one registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	readingsSubmitted *prometheus.CounterVec
	readingsDropped   *prometheus.CounterVec
	submitRetries     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	rateLimited       *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		readingsSubmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_submitted_total",
				Help: "Synthetic readings accepted by the telemetry sink, by mode",
			},
			[]string{"mode"},
		),
		readingsDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_dropped_total",
				Help: "Synthetic readings dropped after exhausting retries, by mode",
			},
			[]string{"mode"},
		),
		submitRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "submit_retries_total",
				Help: "Retried telemetry submissions, by mode",
			},
			[]string{"mode"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		rateLimited: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rate_limited_total",
				Help: "Requests rejected with 429, by limiter scope",
			},
			[]string{"scope"},
		),
	}
}

func (m *Metrics) ReadingSubmitted(mode string) {
	if m == nil {
		return
	}
	m.readingsSubmitted.WithLabelValues(mode).Inc()
}

func (m *Metrics) ReadingDropped(mode string) {
	if m == nil {
		return
	}
	m.readingsDropped.WithLabelValues(mode).Inc()
}

func (m *Metrics) SubmitRetried(mode string) {
	if m == nil {
		return
	}
	m.submitRetries.WithLabelValues(mode).Inc()
}

func (m *Metrics) RateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(scope).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests by matched route so path parameters do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

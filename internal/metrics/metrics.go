package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "rental"

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LoginAttempts *prometheus.CounterVec
	Reports       *prometheus.CounterVec
	Contracts     *prometheus.CounterVec
}

// New registers the application metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		LoginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Reports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_reports_generated_total",
				Help: "Generated reports by kind and format",
			},
			[]string{"kind", "format"},
		),
		Contracts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_contract_operations_total",
				Help: "Contract create/update/delete operations",
			},
			[]string{"operation"},
		),
	}
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}

		m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) RecordLogin(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.LoginAttempts.WithLabelValues("success").Inc()
		return
	}
	m.LoginAttempts.WithLabelValues("failure").Inc()
}

func (m *Metrics) RecordReport(kind, format string) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(kind, format).Inc()
}

func (m *Metrics) RecordContract(operation string) {
	if m == nil {
		return
	}
	m.Contracts.WithLabelValues(operation).Inc()
}

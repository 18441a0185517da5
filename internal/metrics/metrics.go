package metrics

import (
	"strconv"
	"time"

	"eventmis/internal/audit"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	reg *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	auditFailures   *prometheus.CounterVec
	lifecycle       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmis",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventmis",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmis",
			Name:      "audit_append_failures_total",
			Help:      "Audit entries that could not be written.",
		}, []string{"action", "entity"}),
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmis",
			Name:      "event_lifecycle_operations_total",
			Help:      "Archive, restore and permanent delete operations by outcome.",
		}, []string{"operation", "outcome"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount,
		m.requestDuration,
		m.auditFailures,
		m.lifecycle,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// AuditAppendFailed implements audit.Observer.
func (m *Metrics) AuditAppendFailed(action audit.Action, entity string) {
	m.auditFailures.WithLabelValues(string(action), entity).Inc()
}

// LifecycleOutcome implements events.Observer.
func (m *Metrics) LifecycleOutcome(op, outcome string) {
	m.lifecycle.WithLabelValues(op, outcome).Inc()
}

// Middleware counts requests by matched route, so path parameters do not
// explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestCount.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
}

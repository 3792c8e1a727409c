package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Claim outcomes for the cleaning staff auto-assignment.
const (
	ClaimWon     = "claimed"
	ClaimLost    = "contended"
	ClaimNoStaff = "no_staff"
)

// Collector owns the application metrics and the registry they live in.
// A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	cleaningTasksTotal  *prometheus.CounterVec
	staffClaimsTotal    *prometheus.CounterVec
	hubClients          prometheus.GaugeFunc
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		cleaningTasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cleaning_task_operations_total",
				Help: "Cleaning task operations by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),
		staffClaimsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cleaning_staff_claims_total",
				Help: "Attempts to claim cleaning staff during auto-assignment",
			},
			[]string{"outcome"},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.cleaningTasksTotal,
		c.staffClaimsTotal,
	)
	return c
}

// TrackClients exposes a gauge backed by count, e.g. connected websocket clients.
func (c *Collector) TrackClients(count func() int) {
	if c == nil || c.hubClients != nil {
		return
	}
	c.hubClients = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "events_hub_clients",
			Help: "Connected dashboard websocket clients",
		},
		func() float64 { return float64(count()) },
	)
	c.registry.MustRegister(c.hubClients)
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordCleaningTask(operation string, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.cleaningTasksTotal.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordStaffClaim(outcome string) {
	if c == nil {
		return
	}
	c.staffClaimsTotal.WithLabelValues(outcome).Inc()
}

// Registry is exposed for tests that gather metrics directly.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

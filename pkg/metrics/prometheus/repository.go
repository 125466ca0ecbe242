// Package prometheus implements the metrics interfaces with Prometheus
// collectors registered on the global metrics registry.
package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{
	0.0005, // 500µs
	0.001,  // 1ms
	0.005,  // 5ms
	0.01,   // 10ms
	0.025,  // 25ms
	0.05,   // 50ms
	0.1,    // 100ms
	0.25,   // 250ms
	0.5,    // 500ms
	1.0,    // 1s
	5.0,    // 5s
}

type repositoryMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	typeRefreshes     *prometheus.CounterVec
	typeRefreshTime   prometheus.Histogram
	typeCount         prometheus.Gauge
}

// NewRepositoryMetrics creates Prometheus-backed RepositoryMetrics.
//
// Returns a no-op implementation if metrics are not enabled.
func NewRepositoryMetrics() metrics.RepositoryMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopRepositoryMetrics()
	}

	reg := metrics.GetRegistry()

	return &repositoryMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittocmis_repository_operations_total",
				Help: "Total number of repository operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittocmis_repository_operation_duration_seconds",
				Help:    "Duration of repository operations in seconds",
				Buckets: durationBuckets,
			},
			[]string{"operation"},
		),
		typeRefreshes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittocmis_type_registry_refreshes_total",
				Help: "Total number of type registry rebuilds by status",
			},
			[]string{"status"},
		),
		typeRefreshTime: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dittocmis_type_registry_refresh_duration_seconds",
				Help:    "Duration of type registry rebuilds in seconds",
				Buckets: durationBuckets,
			},
		),
		typeCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittocmis_type_registry_types",
				Help: "Number of types currently registered",
			},
		),
	}
}

// status labels a result with the protocol error kind.
func status(err error) string {
	if err == nil {
		return "success"
	}
	return cmis.KindOf(err).String()
}

func (m *repositoryMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	m.operationsTotal.WithLabelValues(operation, status(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *repositoryMetrics) RecordTypeRefresh(duration time.Duration, err error) {
	s := "success"
	if err != nil {
		s = "error"
	}
	m.typeRefreshes.WithLabelValues(s).Inc()
	m.typeRefreshTime.Observe(duration.Seconds())
}

func (m *repositoryMetrics) SetTypeCount(count int) {
	m.typeCount.Set(float64(count))
}

type httpMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter
}

// NewHTTPMetrics creates Prometheus-backed HTTPMetrics.
//
// Returns a no-op implementation if metrics are not enabled.
func NewHTTPMetrics() metrics.HTTPMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopHTTPMetrics()
	}

	reg := metrics.GetRegistry()

	return &httpMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittocmis_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittocmis_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: durationBuckets,
			},
			[]string{"route"},
		),
		rateLimited: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittocmis_http_rate_limited_total",
				Help: "Total number of HTTP requests rejected by the rate limiter",
			},
		),
	}
}

func (m *httpMetrics) RecordRequest(route string, code int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *httpMetrics) RecordRateLimited() {
	m.rateLimited.Inc()
}

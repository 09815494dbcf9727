package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Upstream fetches
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec

	// Report rendering
	reportsRendered *prometheus.CounterVec
	reportDuration  *prometheus.HistogramVec

	// Archive writes
	archiveWrites *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundrep_upstream_requests_total",
			Help: "Total number of requests to the fund data source",
		},
		[]string{"endpoint", "status"},
	)
	r.upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundrep_upstream_request_duration_seconds",
			Help:    "Fund data source request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
	r.reportsRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundrep_reports_rendered_total",
			Help: "Total number of report renders",
		},
		[]string{"variant", "outcome"},
	)
	r.reportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundrep_report_duration_seconds",
			Help:    "Report build and render duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"variant"},
	)
	r.archiveWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundrep_archive_writes_total",
			Help: "Total number of rendered reports written to the archive",
		},
		[]string{"backend", "status"},
	)

	reg.MustRegister(r.upstreamRequests)
	reg.MustRegister(r.upstreamDuration)
	reg.MustRegister(r.reportsRendered)
	reg.MustRegister(r.reportDuration)
	reg.MustRegister(r.archiveWrites)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordUpstream records one request to the fund data source. status is a
// status class such as "2xx", or "error" for transport failures.
func (r *Registry) RecordUpstream(endpoint, status string, duration float64) {
	r.upstreamRequests.WithLabelValues(endpoint, status).Inc()
	r.upstreamDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordReport records one report render. outcome is "ok" or an error code.
func (r *Registry) RecordReport(variant, outcome string, duration float64) {
	r.reportsRendered.WithLabelValues(variant, outcome).Inc()
	r.reportDuration.WithLabelValues(variant).Observe(duration)
}

// RecordArchive records one archive write.
func (r *Registry) RecordArchive(backend string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.archiveWrites.WithLabelValues(backend, status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	filesUploadedTotal        *prometheus.CounterVec
	filesNormalizedTotal      *prometheus.CounterVec
	reconciliationsTotal      *prometheus.CounterVec
	verificationOutcomesTotal *prometheus.CounterVec
	matchedCandidates         *prometheus.HistogramVec
	reconciliationDuration    *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adve",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adve",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "adve",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	filesUploadedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adve",
			Subsystem: "files",
			Name:      "uploaded_total",
			Help:      "Total uploaded files by kind.",
		},
		[]string{"service", "kind"},
	)
	filesNormalizedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adve",
			Subsystem: "files",
			Name:      "normalized_total",
			Help:      "Total normalization runs by kind and status.",
		},
		[]string{"service", "kind", "status"},
	)
	reconciliationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adve",
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Total reconciliation runs by status.",
		},
		[]string{"service", "status"},
	)
	verificationOutcomesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adve",
			Subsystem: "reconcile",
			Name:      "verification_outcomes_total",
			Help:      "Total per-candidate verification outcomes by status.",
		},
		[]string{"service", "outcome"},
	)
	matchedCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adve",
			Subsystem: "reconcile",
			Name:      "matched_candidates",
			Help:      "Distribution of matched candidates per reconciliation run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)
	reconciliationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adve",
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Reconciliation run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		filesUploadedTotal,
		filesNormalizedTotal,
		reconciliationsTotal,
		verificationOutcomesTotal,
		matchedCandidates,
		reconciliationDuration,
	)

	return &HTTPServerMetrics{
		registry:                  registry,
		requestTotal:              requestTotal,
		requestDuration:           requestDuration,
		requestInFlight:           requestInFlight,
		filesUploadedTotal:        filesUploadedTotal,
		filesNormalizedTotal:      filesNormalizedTotal,
		reconciliationsTotal:      reconciliationsTotal,
		verificationOutcomesTotal: verificationOutcomesTotal,
		matchedCandidates:         matchedCandidates,
		reconciliationDuration:    reconciliationDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/files/"):
		rest := strings.TrimPrefix(path, "/v1/files/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/v1/files/{file_id}" + rest[i:]
		}
		return "/v1/files/{file_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordFileUploaded(service, kind string) {
	m.filesUploadedTotal.WithLabelValues(service, kind).Inc()
}

func (m *HTTPServerMetrics) RecordNormalization(service, kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.filesNormalizedTotal.WithLabelValues(service, kind, status).Inc()
}

func (m *HTTPServerMetrics) RecordReconciliation(service string, matched int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reconciliationsTotal.WithLabelValues(service, status).Inc()
	if err == nil {
		m.matchedCandidates.WithLabelValues(service).Observe(float64(matched))
	}
	m.reconciliationDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordVerificationOutcome(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.verificationOutcomesTotal.WithLabelValues(service, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}

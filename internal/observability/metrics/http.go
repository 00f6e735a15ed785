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

	pipelineRoutesTotal  *prometheus.CounterVec
	pipelineContextTotal *prometheus.CounterVec
	pipelineRetrievalHit *prometheus.CounterVec
	pipelineNoContext    *prometheus.CounterVec
	pipelineRecords      *prometheus.HistogramVec
	pipelineDuration     *prometheus.HistogramVec
	enrichmentApplied    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meddir",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meddir",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "meddir",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	pipelineRoutesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meddir",
			Subsystem: "pipeline",
			Name:      "routes_total",
			Help:      "Total answered questions by route operation and entity.",
		},
		[]string{"service", "operation", "entity"},
	)
	pipelineContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meddir",
			Subsystem: "pipeline",
			Name:      "context_source_total",
			Help:      "Total answered questions by grounding context source.",
		},
		[]string{"service", "source"},
	)
	pipelineRetrievalHit := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meddir",
			Subsystem: "pipeline",
			Name:      "retrieval_hit_total",
			Help:      "Total questions with at least one retrieval record.",
		},
		[]string{"service", "endpoint"},
	)
	pipelineNoContext := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meddir",
			Subsystem: "pipeline",
			Name:      "no_context_total",
			Help:      "Total questions answered with the explicit no-information outcome.",
		},
		[]string{"service", "endpoint"},
	)
	pipelineRecords := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meddir",
			Subsystem: "pipeline",
			Name:      "retrieval_records",
			Help:      "Distribution of fused retrieval records per question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	pipelineDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meddir",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Question pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	enrichmentApplied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meddir",
			Subsystem: "pipeline",
			Name:      "enrichment_applied_total",
			Help:      "Total questions whose route was refined by snippet enrichment.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		pipelineRoutesTotal,
		pipelineContextTotal,
		pipelineRetrievalHit,
		pipelineNoContext,
		pipelineRecords,
		pipelineDuration,
		enrichmentApplied,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		pipelineRoutesTotal:  pipelineRoutesTotal,
		pipelineContextTotal: pipelineContextTotal,
		pipelineRetrievalHit: pipelineRetrievalHit,
		pipelineNoContext:    pipelineNoContext,
		pipelineRecords:      pipelineRecords,
		pipelineDuration:     pipelineDuration,
		enrichmentApplied:    enrichmentApplied,
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
	case strings.HasPrefix(path, "/v1/questions/"):
		return "/v1/questions/{question_id}"
	default:
		return path
	}
}

// RecordPipelineObservation captures the per-question outcome shape: route,
// context source, record count, and latency.
func (m *HTTPServerMetrics) RecordPipelineObservation(service, endpoint, operation, entity, source string, recordCount int, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	if entity == "" {
		entity = "unknown"
	}
	if source == "" {
		source = "unknown"
	}

	m.pipelineRoutesTotal.WithLabelValues(service, operation, entity).Inc()
	m.pipelineContextTotal.WithLabelValues(service, source).Inc()
	m.pipelineRecords.WithLabelValues(service, endpoint).Observe(float64(recordCount))
	m.pipelineDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if recordCount > 0 {
		m.pipelineRetrievalHit.WithLabelValues(service, endpoint).Inc()
	}
	if source == "none" {
		m.pipelineNoContext.WithLabelValues(service, endpoint).Inc()
	}
}

// RecordEnrichmentApplied counts questions whose route the enrichment loop
// actually refined into new structured context.
func (m *HTTPServerMetrics) RecordEnrichmentApplied(service string) {
	m.enrichmentApplied.WithLabelValues(service).Inc()
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

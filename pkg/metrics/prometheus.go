// Package metrics provides Prometheus metrics for the assessment service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the assessment service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Assessment pipeline
	assessmentsTotal   *prometheus.CounterVec
	assessmentLatency  prometheus.Histogram
	overallScore       prometheus.Histogram
	pathScore          *prometheus.HistogramVec
	heuristicFailures  *prometheus.CounterVec
	patternViolations  *prometheus.CounterVec
	patternPenalty     prometheus.Histogram
	patternTimeouts    *prometheus.CounterVec
	councilOutcomes    *prometheus.CounterVec
	llmRequests        *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec
	authFailures        prometheus.Counter

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "assessor",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	scoreBuckets := prometheus.LinearBuckets(0, 10, 11)

	m.assessmentsTotal = auto.NewCounterVec(
		m.counterOpts("assessments_total", "Total number of completed assessments by mode"),
		[]string{"mode"},
	)
	m.assessmentLatency = auto.NewHistogram(
		m.histogramOpts("assessment_duration_milliseconds", "Assessment processing time in milliseconds", m.histogramBuckets),
	)
	m.overallScore = auto.NewHistogram(
		m.histogramOpts("overall_score", "Distribution of overall assessment scores", scoreBuckets),
	)
	m.pathScore = auto.NewHistogramVec(
		m.histogramOpts("path_score", "Distribution of path scores", scoreBuckets),
		[]string{"path"},
	)
	m.heuristicFailures = auto.NewCounterVec(
		m.counterOpts("heuristic_failures_total", "Heuristic batteries that failed and fell back to the neutral metric"),
		[]string{"path"},
	)
	m.patternViolations = auto.NewCounterVec(
		m.counterOpts("pattern_violations_total", "Detected pattern violations by rule and severity"),
		[]string{"pattern", "severity"},
	)
	m.patternTimeouts = auto.NewCounterVec(
		m.counterOpts("pattern_match_timeouts_total", "Rule matches abandoned after the match timeout"),
		[]string{"pattern"},
	)
	m.patternPenalty = auto.NewHistogram(
		m.histogramOpts("pattern_penalty_points", "Pattern penalty applied to Code Quality", prometheus.LinearBuckets(0, 1, 16)),
	)
	m.councilOutcomes = auto.NewCounterVec(
		m.counterOpts("council_consultations_total", "Council consultations by outcome"),
		[]string{"outcome"},
	)
	m.llmRequests = auto.NewCounterVec(
		m.counterOpts("llm_requests_total", "LLM provider requests by provider, model and status"),
		[]string{"provider", "model", "status"},
	)
	m.llmRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("llm_request_duration_milliseconds", "LLM provider request latency in milliseconds", m.histogramBuckets),
		[]string{"provider", "model"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.rateLimited = auto.NewCounterVec(
		m.counterOpts("http_rate_limited_total", "Requests rejected by the rate limiter"),
		[]string{"endpoint"},
	)
	m.authFailures = auto.NewCounter(
		m.counterOpts("http_auth_failures_total", "Requests rejected for a missing or invalid API key"),
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Assessment Metrics Functions.

// RecordAssessment records a completed assessment.
func RecordAssessment(mode string, latencyMs, overall float64) {
	globalManager.assessmentsTotal.WithLabelValues(mode).Inc()
	globalManager.assessmentLatency.Observe(latencyMs)
	globalManager.overallScore.Observe(overall)
}

// RecordPathScore records the aggregate score of one path.
func RecordPathScore(path string, score float64) {
	globalManager.pathScore.WithLabelValues(path).Observe(score)
}

// RecordHeuristicFailure counts a battery that fell back to the neutral metric.
func RecordHeuristicFailure(path string) {
	globalManager.heuristicFailures.WithLabelValues(path).Inc()
}

// RecordPatternViolation counts one detected violation.
func RecordPatternViolation(pattern, severity string) {
	globalManager.patternViolations.WithLabelValues(pattern, severity).Inc()
}

// RecordPatternTimeout counts a rule match that hit its timeout.
func RecordPatternTimeout(pattern string) {
	globalManager.patternTimeouts.WithLabelValues(pattern).Inc()
}

// RecordPatternPenalty records the penalty applied to a submission.
func RecordPatternPenalty(points float64) {
	globalManager.patternPenalty.Observe(points)
}

// RecordCouncilOutcome counts a council consultation by outcome.
func RecordCouncilOutcome(outcome string) {
	globalManager.councilOutcomes.WithLabelValues(outcome).Inc()
}

// RecordLLMRequest records one provider call.
func RecordLLMRequest(provider, model, status string, latencyMs float64) {
	globalManager.llmRequests.WithLabelValues(provider, model, status).Inc()
	globalManager.llmRequestDuration.WithLabelValues(provider, model).Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// RecordAuthFailure counts a request rejected by API-key auth.
func RecordAuthFailure() {
	globalManager.authFailures.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// CounterValue sums a counter family in the custom registry across all label
// sets matching labels. Unknown families report zero.
func CounterValue(name string, labels map[string]string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGather, err)
	}
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if !labelsMatch(metric.GetLabel(), labels) {
				continue
			}
			total += metric.GetCounter().GetValue()
		}
	}
	return total, nil
}

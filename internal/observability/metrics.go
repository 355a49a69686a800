package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	submissionsTotal      *prometheus.CounterVec
	submissionScore       *prometheus.HistogramVec
	gradingLatencySeconds *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the API and the grader.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weblab_http_requests_total",
			Help: "Total number of web lab API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weblab_http_latency_seconds",
			Help:    "Latency distribution for web lab API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weblab_submissions_total",
			Help: "Uploaded submissions by lab and outcome (graded or rejected).",
		}, []string{"lab", "outcome"})

		submissionScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weblab_submission_score_ratio",
			Help:    "Total score as a fraction of the maximum.",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"lab"})

		gradingLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weblab_grading_latency_seconds",
			Help:    "Time spent discovering and grading one submission.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"lab"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, submissionsTotal, submissionScore, gradingLatencySeconds)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Submissions exposes the submission outcome counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// SubmissionScore exposes the score ratio histogram.
func SubmissionScore() *prometheus.HistogramVec {
	RegisterMetrics()
	return submissionScore
}

// GradingLatency exposes the grading duration histogram.
func GradingLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingLatencySeconds
}

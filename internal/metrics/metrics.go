// Package metrics provides Prometheus-based metrics for chat submissions,
// task mutations and LLM requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskpilot"

// PrometheusRecorder registers its collectors on a private registry so
// several recorders can coexist in one process (tests, multiple servers)
type PrometheusRecorder struct {
	registry *prometheus.Registry

	submissionsTotal   *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	mutationsTotal     *prometheus.CounterVec
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder with Go runtime and process
// collectors already registered
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		submissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_submissions_total",
				Help:      "Total number of chat submissions by intent, outcome and result kind",
			},
			[]string{"intent", "outcome", "kind"},
		),
		submissionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chat_submission_duration_seconds",
				Help:      "Duration of chat submissions in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"intent"},
		),
		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_mutations_total",
				Help:      "Total number of task store mutations by operation",
			},
			[]string{"op"},
		),
		llmRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Total number of LLM requests by model, status and error type",
			},
			[]string{"model", "status", "error_type"},
		),
		llmRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "Duration of LLM requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
}

// ObserveSubmission records a finished chat submission
func (p *PrometheusRecorder) ObserveSubmission(intent, outcome, kind string, duration time.Duration) {
	p.submissionsTotal.WithLabelValues(intent, outcome, kind).Inc()
	p.submissionDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

// ObserveMutation records a successful task store mutation
func (p *PrometheusRecorder) ObserveMutation(op string) {
	p.mutationsTotal.WithLabelValues(op).Inc()
}

// ObserveRequest records a completed LLM request
func (p *PrometheusRecorder) ObserveRequest(model string, success bool, errorType string, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	p.llmRequestsTotal.WithLabelValues(model, status, errorType).Inc()
	p.llmRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mostly for tests
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Package metrics exposes prometheus counters for the signup flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the controller reports to.
type Recorder interface {
	RecordBackendCall(op, outcome string, d time.Duration)
	RecordTransition(from, to string)
	RecordValidationFailure(reason string)
	RecordMisalignedSubmission()
	RecordRejectedSubmit()
}

// Outcome labels for RecordBackendCall.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector is the prometheus implementation of Recorder.
type Collector struct {
	backendCalls    *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	validationFails *prometheus.CounterVec
	misaligned      prometheus.Counter
	rejectedSubmits prometheus.Counter
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockedin_web_backend_requests_total",
			Help: "Requests made to the LockedIn backend by operation and outcome.",
		}, []string{"op", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lockedin_web_backend_request_duration_seconds",
			Help:    "Latency of LockedIn backend requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockedin_web_view_transitions_total",
			Help: "View state transitions.",
		}, []string{"from", "to"}),
		validationFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockedin_web_validation_failures_total",
			Help: "Submissions rejected locally before any request.",
		}, []string{"reason"}),
		misaligned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockedin_web_misaligned_submissions_total",
			Help: "Signups whose reminder times no longer line up with the filtered goals.",
		}),
		rejectedSubmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockedin_web_rejected_submits_total",
			Help: "Submits refused because another one was still pending.",
		}),
	}

	reg.MustRegister(
		c.backendCalls,
		c.backendLatency,
		c.transitions,
		c.validationFails,
		c.misaligned,
		c.rejectedSubmits,
	)
	return c
}

func (c *Collector) RecordBackendCall(op, outcome string, d time.Duration) {
	c.backendCalls.WithLabelValues(op, outcome).Inc()
	c.backendLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (c *Collector) RecordTransition(from, to string) {
	c.transitions.WithLabelValues(from, to).Inc()
}

func (c *Collector) RecordValidationFailure(reason string) {
	c.validationFails.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordMisalignedSubmission() {
	c.misaligned.Inc()
}

func (c *Collector) RecordRejectedSubmit() {
	c.rejectedSubmits.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Package fdbmetrics tracks Prometheus metrics for the retry loop:
// attempt outcomes and retry reasons. Mirrors the teacher's GSS metrics
// pattern, including its nil-receiver-is-a-no-op contract so callers never
// need to branch on whether metrics are enabled.
package fdbmetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks retry-loop attempt outcomes and retry reasons. A nil
// *Metrics is a valid no-op receiver.
type Metrics struct {
	// Attempts counts retry-loop attempts by outcome.
	// Labels: outcome=[success, fatal, cancelled, commit_unknown_result,
	//                  retry_limit_exceeded]
	Attempts *prometheus.CounterVec

	// RetryReason counts retriable errors that sent the loop through
	// OnError, by numeric error code.
	RetryReason *prometheus.CounterVec

	// CommitDuration tracks wall-clock time spent in Transaction.Commit.
	CommitDuration prometheus.Histogram
}

// New creates and registers retry-loop Prometheus metrics under namespace.
// If registerer is nil, prometheus.DefaultRegisterer is used.
func New(namespace string, registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "fdb_client"
	}

	m := &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: namespace + "_attempts_total",
				Help: "Total retry-loop attempts by outcome",
			},
			[]string{"outcome"},
		),
		RetryReason: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: namespace + "_retry_reason_total",
				Help: "Total retries by native error code",
			},
			[]string{"code"},
		),
		CommitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    namespace + "_commit_duration_seconds",
				Help:    "Transaction.Commit wall-clock duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	registerer.MustRegister(m.Attempts, m.RetryReason, m.CommitDuration)
	return m
}

// NoOp returns a *Metrics that records nothing and was never registered;
// used as Database.Open's default when WithMetrics is not given.
func NoOp() *Metrics {
	return nil
}

// RecordOutcome records a retry-loop attempt's terminal outcome.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(outcome).Inc()
}

// RecordRetry records a retriable error code that triggered OnError.
func (m *Metrics) RecordRetry(code int) {
	if m == nil {
		return
	}
	m.RetryReason.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveCommit records how long a successful Commit took.
func (m *Metrics) ObserveCommit(seconds float64) {
	if m == nil {
		return
	}
	m.CommitDuration.Observe(seconds)
}

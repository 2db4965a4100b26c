// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for flow execution metrics.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// FlowExecutions is the counter for auth flow executions.
// Use RegisterMetrics to register this with a Prometheus registry.
var FlowExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emberhost_auth_flow_executions_total",
		Help: "Total number of auth flow executions",
	},
	[]string{"operation", "status"},
)

// FlowDuration is the histogram for auth flow execution duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var FlowDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "emberhost_auth_flow_duration_seconds",
		Help:    "Auth flow execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// EmailsSent is the counter for transactional emails dispatched by flows.
var EmailsSent = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emberhost_auth_emails_sent_total",
		Help: "Total number of transactional emails sent by kind",
	},
	[]string{"kind"},
)

// RegisterMetrics registers auth package metrics with the given
// Prometheus registry. This must be called at startup to make metrics
// available on /metrics. Panics if registration fails (following
// prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(FlowExecutions)
	reg.MustRegister(FlowDuration)
	reg.MustRegister(EmailsSent)
}

// observeFlow records counter and duration metrics for one flow run.
func observeFlow(operation string, seconds float64, err error) {
	status := StatusSuccess
	if err != nil {
		if _, ok := AsFlowError(err); ok {
			status = StatusRejected
		} else {
			status = StatusError
		}
	}
	FlowExecutions.WithLabelValues(operation, status).Inc()
	FlowDuration.WithLabelValues(operation).Observe(seconds)
}

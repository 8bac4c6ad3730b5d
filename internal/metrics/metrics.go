// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Detection run outcomes.
const (
	OutcomeCompleted    = "completed"
	OutcomeInsufficient = "insufficient_data"
	OutcomeLocked       = "locked"
	OutcomeFailed       = "failed"
)

// Metrics groups the service's collectors. A nil *Metrics records nothing.
type Metrics struct {
	anomalyRuns       *prometheus.CounterVec
	anomaliesDetected prometheus.Counter
	alertsCreated     *prometheus.CounterVec
	detectionDuration prometheus.Histogram
	httpRequests      *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		anomalyRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetcarbon_anomaly_runs_total",
				Help: "Anomaly detection runs by outcome.",
			},
			[]string{"outcome"},
		),
		anomaliesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetcarbon_anomalies_detected_total",
			Help: "Trips flagged as anomalous.",
		}),
		alertsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetcarbon_alerts_created_total",
				Help: "Compliance alerts created.",
			},
			[]string{"kind", "severity"},
		),
		detectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetcarbon_detection_duration_seconds",
			Help:    "Time spent fitting and scoring one company's trips.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetcarbon_http_requests_total",
				Help: "HTTP requests by method, route pattern and status.",
			},
			[]string{"method", "route", "status"},
		),
	}
	reg.MustRegister(m.anomalyRuns, m.anomaliesDetected, m.alertsCreated, m.detectionDuration, m.httpRequests)
	return m
}

// DetectionRun records one run. anomalies and elapsed are ignored unless
// the run completed.
func (m *Metrics) DetectionRun(outcome string, anomalies int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.anomalyRuns.WithLabelValues(outcome).Inc()
	if outcome != OutcomeCompleted {
		return
	}
	m.anomaliesDetected.Add(float64(anomalies))
	m.detectionDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) AlertCreated(kind, severity string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(kind, severity).Inc()
}

// HTTPRequest counts a served request. route is the chi pattern, not the
// raw path, to keep label cardinality bounded.
func (m *Metrics) HTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

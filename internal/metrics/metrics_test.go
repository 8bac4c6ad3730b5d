package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/metrics"
)

func TestDetectionRun_Completed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.DetectionRun(metrics.OutcomeCompleted, 4, 30*time.Millisecond)
	m.DetectionRun(metrics.OutcomeInsufficient, 99, time.Second)

	expected := `
# HELP fleetcarbon_anomalies_detected_total Trips flagged as anomalous.
# TYPE fleetcarbon_anomalies_detected_total counter
fleetcarbon_anomalies_detected_total 4
# HELP fleetcarbon_anomaly_runs_total Anomaly detection runs by outcome.
# TYPE fleetcarbon_anomaly_runs_total counter
fleetcarbon_anomaly_runs_total{outcome="completed"} 1
fleetcarbon_anomaly_runs_total{outcome="insufficient_data"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"fleetcarbon_anomalies_detected_total", "fleetcarbon_anomaly_runs_total")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "fleetcarbon_detection_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAlertCreated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.AlertCreated("DEADLINE", "HIGH")
	m.AlertCreated("DEADLINE", "HIGH")
	m.AlertCreated("ANOMALY", "MEDIUM")

	n, err := testutil.GatherAndCount(reg, "fleetcarbon_alerts_created_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per label pair")
}

func TestHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.HTTPRequest("GET", "/companies/{id}", 200)

	expected := `
# HELP fleetcarbon_http_requests_total HTTP requests by method, route pattern and status.
# TYPE fleetcarbon_http_requests_total counter
fleetcarbon_http_requests_total{method="GET",route="/companies/{id}",status="200"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fleetcarbon_http_requests_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.DetectionRun(metrics.OutcomeCompleted, 1, time.Second)
		m.AlertCreated("ANOMALY", "HIGH")
		m.HTTPRequest("GET", "/", 200)
	})
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	assert.Panics(t, func() { metrics.New(reg) })
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetConnectionState(1)
	m.ObserveReconnect(true)
	m.ObserveReconnect(false)
	m.ObserveReconnect(false)
	m.ObserveHeartbeat(true)
	m.ObserveGateWait(3 * time.Millisecond)
	m.ObserveRequest("auth_users", "Retrieve", true)
	m.ObserveWorkflow("register", "conflict")
	m.ObserveHTTP("POST", "/auth/login", 200, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionState))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconnects.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconnects.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("auth_users", "Retrieve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workflows.WithLabelValues("register", "conflict")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.SetConnectionState(0)
	m.ObserveReconnect(true)
	m.ObserveHeartbeat(false)
	m.ObserveGateWait(time.Second)
	m.ObserveRequest("t", "Insert", false)
	m.ObserveWorkflow("login", "ok")
	m.ObserveHTTP("GET", "/health", 503, time.Millisecond)
}

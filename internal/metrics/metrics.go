// Package metrics owns the Prometheus collectors for the database connection,
// the request gate and the auth workflows. A nil *Metrics is valid and
// records nothing, so components can be built without a registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wsauth"

type Metrics struct {
	connectionState prometheus.Gauge
	reconnects      *prometheus.CounterVec
	heartbeats      *prometheus.CounterVec
	gateWait        prometheus.Histogram
	requests        *prometheus.CounterVec
	workflows       *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dbclient",
			Name:      "connection_state",
			Help:      "Database actor connection state: 0 disconnected, 1 connected, 2 reconnecting.",
		}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dbclient",
			Name:      "reconnects_total",
			Help:      "Scheduled reconnect attempts by result.",
		}, []string{"result"}),
		heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dbclient",
			Name:      "heartbeats_total",
			Help:      "Heartbeat pings by result.",
		}, []string{"result"}),
		gateWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dbclient",
			Name:      "gate_wait_seconds",
			Help:      "Time spent waiting to acquire the request gate.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dbclient",
			Name:      "requests_total",
			Help:      "Database requests by table, action and result.",
		}, []string{"table", "action", "result"}),
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "workflows_total",
			Help:      "Auth workflow runs by workflow and outcome.",
		}, []string{"workflow", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.connectionState,
		m.reconnects,
		m.heartbeats,
		m.gateWait,
		m.requests,
		m.workflows,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) SetConnectionState(v int) {
	if m == nil {
		return
	}
	m.connectionState.Set(float64(v))
}

func (m *Metrics) ObserveReconnect(ok bool) {
	if m == nil {
		return
	}
	m.reconnects.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) ObserveHeartbeat(ok bool) {
	if m == nil {
		return
	}
	m.heartbeats.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) ObserveGateWait(d time.Duration) {
	if m == nil {
		return
	}
	m.gateWait.Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(table, action string, ok bool) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(table, action, result(ok)).Inc()
}

func (m *Metrics) ObserveWorkflow(workflow, outcome string) {
	if m == nil {
		return
	}
	m.workflows.WithLabelValues(workflow, outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Package observability provides Prometheus instrumentation for the
// graph cache. Collectors are registered on an injected Registerer;
// a nil *CacheMetrics is a safe no-op, so the repository works without
// a metrics registry in tests and embedded use.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics holds the collectors for repository operations.
type CacheMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	graphNodes *prometheus.GaugeVec
	graphEdges *prometheus.GaugeVec
}

// NewCacheMetrics creates and registers the cache collectors.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphcache",
			Name:      "operations_total",
			Help:      "Repository operations by operation and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graphcache",
			Name:      "operation_duration_seconds",
			Help:      "Repository operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"operation"}),
		graphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "graphcache",
			Name:      "graph_nodes",
			Help:      "Node count of the most recently saved graph per namespace.",
		}, []string{"graph_type"}),
		graphEdges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "graphcache",
			Name:      "graph_edges",
			Help:      "Edge count of the most recently saved graph per namespace.",
		}, []string{"graph_type"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration, m.graphNodes, m.graphEdges)
	}
	return m
}

// ObserveOperation records one repository operation's outcome and latency.
func (m *CacheMetrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.operations.WithLabelValues(operation, status).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordGraphSize records the size of a graph that was just saved.
func (m *CacheMetrics) RecordGraphSize(graphType string, nodes, edges int) {
	if m == nil {
		return
	}
	m.graphNodes.WithLabelValues(graphType).Set(float64(nodes))
	m.graphEdges.WithLabelValues(graphType).Set(float64(edges))
}

// ForgetNamespace drops the per-namespace gauges after a delete.
func (m *CacheMetrics) ForgetNamespace(graphType string) {
	if m == nil {
		return
	}
	m.graphNodes.DeleteLabelValues(graphType)
	m.graphEdges.DeleteLabelValues(graphType)
}

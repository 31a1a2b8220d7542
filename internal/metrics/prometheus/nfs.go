// Package prometheus implements internal/metrics's interfaces on top of
// github.com/prometheus/client_golang, following the nil-safe-receiver
// pattern: every method checks for a nil receiver before touching a
// collector. Every constructor returns a nil interface value when metrics
// are disabled, so callers check the returned interface for nil before
// recording.
package prometheus

import (
	"time"

	"github.com/netkitd/netkitd/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type nfsMetrics struct {
	compoundDuration *prometheus.HistogramVec
	compoundTotal    *prometheus.CounterVec
	operationTotal   *prometheus.CounterVec
	bytesTotal       *prometheus.CounterVec
	activeConns      prometheus.Gauge
	connsAccepted    prometheus.Counter
	connsClosed      prometheus.Counter
}

// NewNFSMetrics returns a Prometheus-backed metrics.NFSMetrics, or nil if
// metrics.InitRegistry has not been called.
func NewNFSMetrics() metrics.NFSMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &nfsMetrics{
		compoundDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netkitd_nfs_compound_duration_seconds",
				Help:    "Duration of COMPOUND requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		compoundTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "netkitd_nfs_compound_total",
				Help: "Total COMPOUND requests by final status",
			},
			[]string{"status"},
		),
		operationTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "netkitd_nfs_operation_total",
				Help: "Total NFSv4 operations by name and status",
			},
			[]string{"operation", "status"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "netkitd_nfs_bytes_total",
				Help: "Bytes transferred by direction",
			},
			[]string{"direction"},
		),
		activeConns: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "netkitd_nfs_active_connections",
				Help: "Current number of open NFS connections",
			},
		),
		connsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "netkitd_nfs_connections_accepted_total",
				Help: "Total accepted NFS connections",
			},
		),
		connsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "netkitd_nfs_connections_closed_total",
				Help: "Total closed NFS connections",
			},
		),
	}
}

func (m *nfsMetrics) RecordCompound(duration time.Duration, status string) {
	if m == nil {
		return
	}
	m.compoundDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.compoundTotal.WithLabelValues(status).Inc()
}

func (m *nfsMetrics) RecordOperation(opName string, status string) {
	if m == nil {
		return
	}
	m.operationTotal.WithLabelValues(opName, status).Inc()
}

func (m *nfsMetrics) RecordBytesTransferred(direction string, bytes uint64) {
	if m == nil {
		return
	}
	m.bytesTotal.WithLabelValues(direction).Add(float64(bytes))
}

func (m *nfsMetrics) SetActiveConnections(count int32) {
	if m == nil {
		return
	}
	m.activeConns.Set(float64(count))
}

func (m *nfsMetrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.connsAccepted.Inc()
}

func (m *nfsMetrics) RecordConnectionClosed() {
	if m == nil {
		return
	}
	m.connsClosed.Inc()
}

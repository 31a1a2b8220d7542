package prometheus

import (
	"github.com/netkitd/netkitd/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type subnetMetrics struct {
	allocations        *prometheus.CounterVec
	allocationFailures *prometheus.CounterVec
	teardowns          *prometheus.CounterVec
	activeSubnets      prometheus.Gauge
}

// NewSubnetMetrics returns a Prometheus-backed metrics.SubnetMetrics, or
// nil if metrics.InitRegistry has not been called.
func NewSubnetMetrics() metrics.SubnetMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &subnetMetrics{
		allocations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "netkitd_subnet_allocations_total",
				Help: "Total successful subnet allocations by platform",
			},
			[]string{"platform"},
		),
		allocationFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "netkitd_subnet_allocation_failures_total",
				Help: "Total failed subnet allocation attempts by platform and reason",
			},
			[]string{"platform", "reason"},
		),
		teardowns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "netkitd_subnet_teardowns_total",
				Help: "Total subnet teardowns by platform",
			},
			[]string{"platform"},
		),
		activeSubnets: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "netkitd_subnet_active",
				Help: "Current number of allocated subnets",
			},
		),
	}
}

func (m *subnetMetrics) RecordAllocation(platform string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(platform).Inc()
}

func (m *subnetMetrics) RecordAllocationFailure(platform string, reason string) {
	if m == nil {
		return
	}
	m.allocationFailures.WithLabelValues(platform, reason).Inc()
}

func (m *subnetMetrics) RecordTeardown(platform string) {
	if m == nil {
		return
	}
	m.teardowns.WithLabelValues(platform).Inc()
}

func (m *subnetMetrics) SetActiveSubnets(count int) {
	if m == nil {
		return
	}
	m.activeSubnets.Set(float64(count))
}

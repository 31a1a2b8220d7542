package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry atomic.Pointer[prometheus.Registry]
)

// InitRegistry enables metrics collection against reg. Concrete
// collectors (internal/metrics/prometheus) check IsEnabled before
// registering themselves, so this must be called before constructing
// them.
func InitRegistry(reg *prometheus.Registry) {
	registry.Store(reg)
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return registry.Load() != nil
}

// GetRegistry returns the registry passed to InitRegistry, or nil.
func GetRegistry() *prometheus.Registry {
	return registry.Load()
}

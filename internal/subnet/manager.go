package subnet

import (
	"fmt"
	"net"
	"sync"

	"github.com/netkitd/netkitd/internal/logger"
	"github.com/netkitd/netkitd/internal/metrics"
)

// MaxSubnets bounds how many aliases/dummy interfaces this process will
// allocate at once, matching the lo0:0..lo0:254 / dummy0..dummy254
// probe range the platform backends scan.
const MaxSubnets = 255

// Allocation is a single subnet this process has configured.
type Allocation struct {
	CIDR      *net.IPNet
	Interface string
}

// Platform is the OS-specific backend for configuring and removing a
// loopback alias (BSD) or dummy interface (Linux).
type Platform interface {
	// Name identifies the backend for logging and metrics labels.
	Name() string

	// DetectExisting lists subnets already configured on the host,
	// whether or not this process allocated them.
	DetectExisting() ([]*net.IPNet, error)

	// Configure brings up cidr on a freshly chosen interface and
	// returns that interface's name.
	Configure(cidr *net.IPNet) (iface string, err error)

	// Remove tears down the interface previously returned by Configure.
	Remove(cidr *net.IPNet, iface string) error
}

// Manager allocates and tears down subnets, enforcing that every
// allocation is validated and that removal always targets a subnet this
// process itself configured.
type Manager struct {
	mu       sync.Mutex
	platform Platform
	metrics  metrics.SubnetMetrics
	byCIDR   map[string]Allocation
}

// NewManager returns a Manager using the platform-appropriate backend
// for the host this process is running on.
func NewManager(subnetMetrics metrics.SubnetMetrics) *Manager {
	return newManagerForPlatform(defaultPlatform(), subnetMetrics)
}

func newManagerForPlatform(p Platform, subnetMetrics metrics.SubnetMetrics) *Manager {
	return &Manager{
		platform: p,
		metrics:  subnetMetrics,
		byCIDR:   make(map[string]Allocation),
	}
}

// Allocate validates cidrText, checks it against both the allowed range
// and every subnet already present on the host (this process's own
// allocations and anything pre-existing), and configures it.
func (m *Manager) Allocate(cidrText string) (Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, cidr, err := net.ParseCIDR(cidrText)
	if err != nil {
		m.recordFailure("invalid_cidr")
		return Allocation{}, fmt.Errorf("allocate: %w", err)
	}
	if err := ValidateNetwork(cidr); err != nil {
		m.recordFailure("disallowed_range")
		return Allocation{}, fmt.Errorf("allocate: %w", err)
	}

	if len(m.byCIDR) >= MaxSubnets {
		m.recordFailure("capacity_exceeded")
		return Allocation{}, fmt.Errorf("allocate: at capacity (%d subnets)", MaxSubnets)
	}
	if _, exists := m.byCIDR[cidr.String()]; exists {
		m.recordFailure("already_allocated")
		return Allocation{}, fmt.Errorf("allocate: %s is already allocated", cidr)
	}

	existing, err := m.platform.DetectExisting()
	if err != nil {
		m.recordFailure("detect_failed")
		return Allocation{}, fmt.Errorf("allocate: detect existing subnets: %w", err)
	}
	for _, other := range existing {
		if networksOverlap(cidr, other) {
			m.recordFailure("overlaps_existing")
			return Allocation{}, fmt.Errorf("allocate: %s overlaps existing subnet %s", cidr, other)
		}
	}

	iface, err := m.platform.Configure(cidr)
	if err != nil {
		m.recordFailure("configure_failed")
		return Allocation{}, fmt.Errorf("allocate: configure %s: %w", cidr, err)
	}

	alloc := Allocation{CIDR: cidr, Interface: iface}
	m.byCIDR[cidr.String()] = alloc

	logger.Info("subnet allocated", "cidr", cidr.String(), "interface", iface, "platform", m.platform.Name())
	if m.metrics != nil {
		m.metrics.RecordAllocation(m.platform.Name())
		m.metrics.SetActiveSubnets(len(m.byCIDR))
	}
	return alloc, nil
}

// Remove tears down a subnet this process previously allocated.
func (m *Manager) Remove(cidrText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, cidr, err := net.ParseCIDR(cidrText)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	alloc, ok := m.byCIDR[cidr.String()]
	if !ok {
		return fmt.Errorf("remove: %s is not allocated by this process", cidr)
	}

	if err := m.platform.Remove(alloc.CIDR, alloc.Interface); err != nil {
		return fmt.Errorf("remove: %s: %w", cidr, err)
	}
	delete(m.byCIDR, cidr.String())

	logger.Info("subnet removed", "cidr", cidr.String(), "interface", alloc.Interface, "platform", m.platform.Name())
	if m.metrics != nil {
		m.metrics.RecordTeardown(m.platform.Name())
		m.metrics.SetActiveSubnets(len(m.byCIDR))
	}
	return nil
}

// List returns every subnet this process currently has allocated.
func (m *Manager) List() []Allocation {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Allocation, 0, len(m.byCIDR))
	for _, alloc := range m.byCIDR {
		out = append(out, alloc)
	}
	return out
}

// TeardownAll removes every subnet this process has allocated. It is
// called on graceful shutdown so a restart never finds stale aliases or
// dummy interfaces left behind by the previous run.
func (m *Manager) TeardownAll() {
	m.mu.Lock()
	allocs := make([]Allocation, 0, len(m.byCIDR))
	for _, alloc := range m.byCIDR {
		allocs = append(allocs, alloc)
	}
	m.mu.Unlock()

	for _, alloc := range allocs {
		if err := m.Remove(alloc.CIDR.String()); err != nil {
			logger.Warn("failed to tear down subnet on shutdown", "cidr", alloc.CIDR.String(), "error", err)
		}
	}
}

func (m *Manager) recordFailure(reason string) {
	if m.metrics != nil {
		m.metrics.RecordAllocationFailure(m.platform.Name(), reason)
	}
}

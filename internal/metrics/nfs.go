// Package metrics defines the observability interfaces for the NFSv4
// server and subnet manager. Both are optional - passing nil disables
// collection with zero overhead, which is why every call site that uses
// them is expected to nil-check first (see metrics/prometheus for the
// concrete implementation that does so on every method).
package metrics

import "time"

// NFSMetrics records observability data for the NFSv4 server.
type NFSMetrics interface {
	// RecordCompound records a finished COMPOUND request: how long it
	// took and the overall status it returned.
	RecordCompound(duration time.Duration, status string)

	// RecordOperation records a single operation within a COMPOUND.
	RecordOperation(opName string, status string)

	// RecordBytesTransferred records bytes read or written by READ/WRITE.
	RecordBytesTransferred(direction string, bytes uint64)

	// SetActiveConnections updates the current connection gauge.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the accepted-connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the closed-connections counter.
	RecordConnectionClosed()
}

// SubnetMetrics records observability data for the subnet manager.
type SubnetMetrics interface {
	// RecordAllocation records a successful subnet allocation attempt.
	RecordAllocation(platform string)

	// RecordAllocationFailure records a failed allocation attempt.
	RecordAllocationFailure(platform string, reason string)

	// RecordTeardown records a subnet being torn down.
	RecordTeardown(platform string)

	// SetActiveSubnets updates the current allocated-subnet gauge.
	SetActiveSubnets(count int)
}

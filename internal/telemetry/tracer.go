package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for NFSv4 and subnet-manager spans.
const (
	AttrClientAddr = "client.address"

	AttrRPCXID     = "rpc.xid"
	AttrRPCProgram = "rpc.program"
	AttrRPCVersion = "rpc.version"

	AttrNFSProcedure = "nfs.procedure"
	AttrNFSHandle    = "nfs.handle"
	AttrNFSStatus    = "nfs.status"

	AttrSubnetCIDR      = "subnet.cidr"
	AttrSubnetInterface = "subnet.interface"
	AttrSubnetPlatform  = "subnet.platform"

	AttrUID = "user.uid"
	AttrGID = "user.gid"
)

// Span names.
const (
	SpanNFSCompound = "nfs.COMPOUND"
	SpanNFSNull     = "nfs.NULL"

	SpanSubnetAllocate = "subnet.allocate"
	SpanSubnetRemove   = "subnet.remove"
)

// ClientAddr returns an attribute for the client's network address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// RPCXID returns an attribute for an ONC-RPC transaction ID.
func RPCXID(xid uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCXID, int64(xid))
}

// NFSProcedure returns an attribute for the RPC procedure name (NULL or COMPOUND).
func NFSProcedure(name string) attribute.KeyValue {
	return attribute.String(AttrNFSProcedure, name)
}

// NFSHandle returns an attribute for an opaque NFSv4 filehandle, hex-encoded.
func NFSHandle(handle []byte) attribute.KeyValue {
	return attribute.String(AttrNFSHandle, fmt.Sprintf("%x", handle))
}

// NFSStatus returns an attribute for an NFSv4 status code.
func NFSStatus(status int) attribute.KeyValue {
	return attribute.Int(AttrNFSStatus, status)
}

// UID returns an attribute for the credential's user ID.
func UID(uid uint32) attribute.KeyValue {
	return attribute.Int64(AttrUID, int64(uid))
}

// GID returns an attribute for the credential's group ID.
func GID(gid uint32) attribute.KeyValue {
	return attribute.Int64(AttrGID, int64(gid))
}

// SubnetCIDR returns an attribute for an allocated subnet's CIDR.
func SubnetCIDR(cidr string) attribute.KeyValue {
	return attribute.String(AttrSubnetCIDR, cidr)
}

// SubnetInterface returns an attribute for the interface backing a subnet.
func SubnetInterface(iface string) attribute.KeyValue {
	return attribute.String(AttrSubnetInterface, iface)
}

// SubnetPlatform returns an attribute for the subnet backend in use (linux, bsd).
func SubnetPlatform(name string) attribute.KeyValue {
	return attribute.String(AttrSubnetPlatform, name)
}

// StartNFSSpan starts a span for one RPC call (NULL or COMPOUND).
func StartNFSSpan(ctx context.Context, procedure string, xid uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{NFSProcedure(procedure), RPCXID(xid)}, attrs...)
	return StartSpan(ctx, "nfs."+procedure, trace.WithAttributes(allAttrs...))
}

// StartSubnetSpan starts a span for a subnet manager operation.
func StartSubnetSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "subnet."+operation, trace.WithAttributes(attrs...))
}

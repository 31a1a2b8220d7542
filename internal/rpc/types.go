// Package rpc implements the ONC-RPC v2 (RFC 5531) message envelope used
// to carry NFSv4 COMPOUND calls: record-marked fragment framing, the
// call/reply headers, and AUTH_SYS credential parsing.
package rpc

import "fmt"

// Message types carried in the second word of every RPC message.
const (
	RPCCall  uint32 = 0
	RPCReply uint32 = 1
)

// Reply states.
const (
	RPCMsgAccepted uint32 = 0
	RPCMsgDenied   uint32 = 1
)

// Accept statuses, RFC 5531 section 7.4.
const (
	RPCSuccess      uint32 = 0
	RPCProgUnavail  uint32 = 1
	RPCProgMismatch uint32 = 2
	RPCProcUnavail  uint32 = 3
	RPCGarbageArgs  uint32 = 4
	RPCSystemErr    uint32 = 5
)

// Auth flavors, RFC 5531 section 8.2.
const (
	AuthNull  uint32 = 0
	AuthUnix  uint32 = 1
	AuthShort uint32 = 2
	AuthDES   uint32 = 3
)

const rpcVersion uint32 = 2

// RPCCallMessage is the parsed header of an incoming RPC call, plus the
// raw offset at which its procedure-specific arguments begin.
type RPCCallMessage struct {
	XID         uint32
	RPCVersion  uint32
	Program     uint32
	Version     uint32
	Procedure   uint32
	Credential  OpaqueAuth
	Verifier    OpaqueAuth
	bodyOffset  int
}

// OpaqueAuth is the RFC 5531 opaque_auth structure: a flavor tag plus an
// opaque body whose interpretation depends on the flavor.
type OpaqueAuth struct {
	Flavor uint32
	Body   []byte
}

// UnixAuth is the decoded body of an AUTH_UNIX (AUTH_SYS) credential.
type UnixAuth struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	GIDs        []uint32
}

// String renders the credential for logging.
func (a *UnixAuth) String() string {
	return fmt.Sprintf("UnixAuth{host=%s, uid=%d, gid=%d, gids=%v}", a.MachineName, a.UID, a.GID, a.GIDs)
}

package server

import (
	"bytes"
	"fmt"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/rpc"
	"github.com/netkitd/netkitd/internal/xdr"
)

// readCompoundHeader decodes the tag and minorversion fields that open
// every COMPOUND4args, leaving r positioned at the operation count.
func readCompoundHeader(r *bytes.Reader) (tag string, minorVersion uint32, err error) {
	tag, err = xdr.DecodeString(r)
	if err != nil {
		return "", 0, fmt.Errorf("read compound header: tag: %w", err)
	}
	minorVersion, err = xdr.DecodeUint32(r)
	if err != nil {
		return "", 0, fmt.Errorf("read compound header: minorversion: %w", err)
	}
	return tag, minorVersion, nil
}

// decodeCredential extracts UID/GID from an AUTH_UNIX credential, or
// zero-value credentials for AUTH_NULL and any other flavor this server
// does not understand.
func decodeCredential(call *rpc.RPCCallMessage) types.Credential {
	if call.Credential.Flavor != rpc.AuthUnix {
		return types.Credential{}
	}
	auth, err := rpc.ParseUnixAuth(call.Credential.Body)
	if err != nil {
		return types.Credential{}
	}
	return types.Credential{UID: auth.UID, GID: auth.GID}
}

var statusNames = map[types.Status]string{
	types.NFS4_OK:             "NFS4_OK",
	types.NFS4ERR_ERROR:       "NFS4ERR_ERROR",
	types.NFS4ERR_BADHANDLE:   "NFS4ERR_BADHANDLE",
	types.NFS4ERR_BADTYPE:     "NFS4ERR_BADTYPE",
	types.NFS4ERR_NOENT:       "NFS4ERR_NOENT",
	types.NFS4ERR_IO:          "NFS4ERR_IO",
	types.NFS4ERR_NOSPACE:     "NFS4ERR_NOSPACE",
	types.NFS4ERR_BADNAME:     "NFS4ERR_BADNAME",
	types.NFS4ERR_ROFS:        "NFS4ERR_ROFS",
	types.NFS4ERR_STALE:       "NFS4ERR_STALE",
	types.NFS4ERR_BAD_STATEID: "NFS4ERR_BAD_STATEID",
	types.NFS4ERR_BADSEQID:    "NFS4ERR_BADSEQID",
}

func statusName(s types.Status) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("NFS4ERR_%d", uint32(s))
}

var opNames = map[types.OpCode]string{
	types.OP_ACCESS:       "ACCESS",
	types.OP_CLOSE:        "CLOSE",
	types.OP_COMMIT:       "COMMIT",
	types.OP_CREATE:       "CREATE",
	types.OP_GETATTR:      "GETATTR",
	types.OP_GETFH:        "GETFH",
	types.OP_LOOKUP:       "LOOKUP",
	types.OP_LOOKUPP:      "LOOKUPP",
	types.OP_OPEN:         "OPEN",
	types.OP_OPEN_CONFIRM: "OPEN_CONFIRM",
	types.OP_READ:         "READ",
	types.OP_WRITE:        "WRITE",
}

func opName(op types.OpCode) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_%d", uint32(op))
}

package ops

import (
	"bytes"
	"os"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

const supportedAccessBits = types.ACCESS4_READ | types.ACCESS4_LOOKUP | types.ACCESS4_MODIFY |
	types.ACCESS4_EXTEND | types.ACCESS4_DELETE | types.ACCESS4_EXECUTE

// Access implements ACCESS: computes the allowed rights from the POSIX
// mode bits of the current filehandle's target against the server
// process's own effective uid/gid (owner class if uid matches, else
// group class if gid matches, else other class), then reports the
// intersection of those allowed rights with the requested mask.
//
// Write-class bits (MODIFY, EXTEND, DELETE) are never granted against a
// read-only export, and EXECUTE is only meaningful - and only ever
// granted - against a regular file; directories report it unsupported.
// EXECUTE on a directory is treated as satisfying a requested LOOKUP.
func Access(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	requested, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_ACCESS, types.NFS4ERR_ERROR)
	}

	path, errResult := requireCurrentFH(ctx, types.OP_ACCESS)
	if errResult != nil {
		return errResult
	}

	info, err := os.Stat(path)
	if err != nil {
		return errorResult(types.OP_ACCESS, types.NFS4ERR_NOENT)
	}

	attrs := posixAttrs(info)
	uid, gid := effectiveIDs()

	var class uint32
	switch {
	case uid == attrs.UID:
		class = (attrs.Mode >> 6) & 0o7
	case gid == attrs.GID:
		class = (attrs.Mode >> 3) & 0o7
	default:
		class = attrs.Mode & 0o7
	}

	var allowed uint32
	if class&0o4 != 0 {
		allowed |= types.ACCESS4_READ
	}
	if class&0o2 != 0 {
		allowed |= types.ACCESS4_MODIFY | types.ACCESS4_EXTEND
	}
	if class&0o1 != 0 {
		allowed |= types.ACCESS4_EXECUTE
	}

	supported := supportedAccessBits
	if info.IsDir() {
		supported &^= types.ACCESS4_EXECUTE
		if class&0o1 != 0 {
			allowed |= types.ACCESS4_LOOKUP
		}
	} else {
		supported &^= types.ACCESS4_LOOKUP | types.ACCESS4_DELETE
		allowed &^= types.ACCESS4_LOOKUP | types.ACCESS4_DELETE
	}

	if ctx.Export.ReadOnly {
		allowed &^= types.ACCESS4_MODIFY | types.ACCESS4_EXTEND | types.ACCESS4_DELETE
	}

	granted := allowed & requested & supported

	buf := new(bytes.Buffer)
	if err := xdr.WriteUint32(buf, supported); err != nil {
		return errorResult(types.OP_ACCESS, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint32(buf, granted); err != nil {
		return errorResult(types.OP_ACCESS, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_ACCESS, Data: buf.Bytes()}
}

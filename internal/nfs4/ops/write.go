package ops

import (
	"bytes"
	"os"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// Stable-storage levels requested by WRITE, RFC 7530 section 14.2.34.
const (
	unstable4  uint32 = 0
	dataSync4  uint32 = 1
	fileSync4  uint32 = 2
)

// Write implements WRITE: writes data at offset into the current
// filehandle, honoring the requested stability level, and reports how
// much was actually written plus the server's current write verifier.
func Write(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	if ctx.Export.ReadOnly {
		return errorResult(types.OP_WRITE, types.NFS4ERR_ROFS)
	}

	stateID, err := decodeStateID(r)
	if err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_ERROR)
	}
	offset, err := xdr.DecodeUint64(r)
	if err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_ERROR)
	}
	stable, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_ERROR)
	}
	data, err := xdr.DecodeOpaque(r)
	if err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_ERROR)
	}

	path, errResult := requireCurrentFH(ctx, types.OP_WRITE)
	if errResult != nil {
		return errResult
	}

	// A stateid need not yet be confirmed: OPEN_CONFIRM governs
	// open-owner sequencing, not a file's writability.
	if stateID != zeroStateID {
		fileState, ok := ctx.States.Lookup(stateID)
		if !ok || fileState.Path != path {
			return errorResult(types.OP_WRITE, types.NFS4ERR_BAD_STATEID)
		}
	}

	if ctx.Export.MaxWriteSize > 0 && uint32(len(data)) > ctx.Export.MaxWriteSize {
		return errorResult(types.OP_WRITE, types.NFS4ERR_ERROR)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult(types.OP_WRITE, types.NFS4ERR_NOENT)
		}
		return errorResult(types.OP_WRITE, types.NFS4ERR_IO)
	}
	defer f.Close()

	n, err := f.WriteAt(data, int64(offset))
	if err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_IO)
	}

	committed := stable
	if stable == dataSync4 || stable == fileSync4 {
		if err := f.Sync(); err != nil {
			return errorResult(types.OP_WRITE, types.NFS4ERR_IO)
		}
		committed = fileSync4
	} else {
		committed = unstable4
	}

	buf := new(bytes.Buffer)
	if err := xdr.WriteUint32(buf, uint32(n)); err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint32(buf, committed); err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_IO)
	}
	if _, err := buf.Write(ctx.Export.WriteVerifier[:]); err != nil {
		return errorResult(types.OP_WRITE, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_WRITE, Data: buf.Bytes()}
}

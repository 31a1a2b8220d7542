package ops

import (
	"bytes"
	"os"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// Commit implements COMMIT: flushes previously UNSTABLE4 writes to
// stable storage and echoes the server's write verifier so the client
// can detect a server restart that lost unflushed data.
func Commit(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	if ctx.Export.ReadOnly {
		return errorResult(types.OP_COMMIT, types.NFS4ERR_ROFS)
	}

	if _, err := xdr.DecodeUint64(r); err != nil { // offset
		return errorResult(types.OP_COMMIT, types.NFS4ERR_ERROR)
	}
	if _, err := xdr.DecodeUint32(r); err != nil { // count
		return errorResult(types.OP_COMMIT, types.NFS4ERR_ERROR)
	}

	path, errResult := requireCurrentFH(ctx, types.OP_COMMIT)
	if errResult != nil {
		return errResult
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult(types.OP_COMMIT, types.NFS4ERR_NOENT)
		}
		return errorResult(types.OP_COMMIT, types.NFS4ERR_IO)
	}
	defer f.Close()

	if err := f.Sync(); err != nil {
		return errorResult(types.OP_COMMIT, types.NFS4ERR_IO)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.Write(ctx.Export.WriteVerifier[:]); err != nil {
		return errorResult(types.OP_COMMIT, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_COMMIT, Data: buf.Bytes()}
}

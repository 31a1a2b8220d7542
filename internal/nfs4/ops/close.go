package ops

import (
	"bytes"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// Close implements CLOSE: retires an open instance's stateid. The
// filehandle itself remains valid and resolvable after CLOSE; only the
// open-state record is removed.
func Close(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	if _, err := xdr.DecodeUint32(r); err != nil { // seqid
		return errorResult(types.OP_CLOSE, types.NFS4ERR_ERROR)
	}
	stateID, err := decodeStateID(r)
	if err != nil {
		return errorResult(types.OP_CLOSE, types.NFS4ERR_ERROR)
	}

	if _, ok := ctx.States.Lookup(stateID); !ok {
		return errorResult(types.OP_CLOSE, types.NFS4ERR_BAD_STATEID)
	}

	ctx.States.Remove(stateID)

	buf := new(bytes.Buffer)
	if err := writeStateID(buf, stateID); err != nil {
		return errorResult(types.OP_CLOSE, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_CLOSE, Data: buf.Bytes()}
}

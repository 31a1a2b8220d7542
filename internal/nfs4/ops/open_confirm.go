package ops

import (
	"bytes"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// OpenConfirm implements OPEN_CONFIRM. The original server declared this
// operation's argument type but its compound dispatcher had no arm for
// it, so every OPEN_CONFIRM silently fell through to a generic error;
// this server implements it fully.
func OpenConfirm(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	stateID, err := decodeStateID(r)
	if err != nil {
		return errorResult(types.OP_OPEN_CONFIRM, types.NFS4ERR_ERROR)
	}
	seqID, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_OPEN_CONFIRM, types.NFS4ERR_ERROR)
	}

	fileState, ok := ctx.States.Lookup(stateID)
	if !ok {
		return errorResult(types.OP_OPEN_CONFIRM, types.NFS4ERR_BAD_STATEID)
	}
	if fileState.Confirmed {
		return errorResult(types.OP_OPEN_CONFIRM, types.NFS4ERR_BADSEQID)
	}

	fileState.Confirmed = true
	fileState.SeqID = seqID
	if err := ctx.States.Update(stateID, fileState); err != nil {
		return errorResult(types.OP_OPEN_CONFIRM, types.NFS4ERR_IO)
	}

	buf := new(bytes.Buffer)
	if err := writeStateID(buf, stateID); err != nil {
		return errorResult(types.OP_OPEN_CONFIRM, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_OPEN_CONFIRM, Data: buf.Bytes()}
}

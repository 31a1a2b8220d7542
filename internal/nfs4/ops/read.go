package ops

import (
	"bytes"
	"io"
	"os"

	"github.com/netkitd/netkitd/internal/bufpool"
	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

var zeroStateID types.StateID

// Read implements READ: returns up to count bytes starting at offset
// from the current filehandle, clamped to the export's configured
// maximum read size, plus whether the read reached end-of-file.
//
// A stateid of all zeros is accepted as an anonymous, stateless read, as
// is the legacy all-ones "bypass" stateid some clients send after a
// server restart invalidated their real stateid's meaning. Any other
// stateid must name an open on exactly this path; the open need not yet
// be confirmed, since OPEN_CONFIRM governs open-owner sequencing, not a
// file's readability.
func Read(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	stateID, err := decodeStateID(r)
	if err != nil {
		return errorResult(types.OP_READ, types.NFS4ERR_ERROR)
	}
	offset, err := xdr.DecodeUint64(r)
	if err != nil {
		return errorResult(types.OP_READ, types.NFS4ERR_ERROR)
	}
	count, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_READ, types.NFS4ERR_ERROR)
	}

	path, errResult := requireCurrentFH(ctx, types.OP_READ)
	if errResult != nil {
		return errResult
	}

	if stateID != zeroStateID {
		fileState, ok := ctx.States.Lookup(stateID)
		if !ok || fileState.Path != path {
			return errorResult(types.OP_READ, types.NFS4ERR_BAD_STATEID)
		}
	}

	if ctx.Export.MaxReadSize > 0 && count > ctx.Export.MaxReadSize {
		count = ctx.Export.MaxReadSize
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult(types.OP_READ, types.NFS4ERR_NOENT)
		}
		return errorResult(types.OP_READ, types.NFS4ERR_IO)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errorResult(types.OP_READ, types.NFS4ERR_IO)
	}
	if info.IsDir() {
		return errorResult(types.OP_READ, types.NFS4ERR_IO)
	}

	data := bufpool.GetUint32(count)
	defer bufpool.Put(data)

	n, err := f.ReadAt(data, int64(offset))
	eof := false
	if err == io.EOF || int64(offset)+int64(n) >= info.Size() {
		eof = true
	} else if err != nil {
		return errorResult(types.OP_READ, types.NFS4ERR_IO)
	}

	buf := new(bytes.Buffer)
	if err := xdr.WriteBool(buf, eof); err != nil {
		return errorResult(types.OP_READ, types.NFS4ERR_IO)
	}
	if err := xdr.WriteXDROpaque(buf, data[:n]); err != nil {
		return errorResult(types.OP_READ, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_READ, Data: buf.Bytes()}
}

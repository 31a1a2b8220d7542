package ops

import (
	"bytes"

	"github.com/netkitd/netkitd/internal/nfs4/types"
)

// GetFH implements GETFH. It returns the current filehandle unchanged.
//
// As a bootstrap convenience for a COMPOUND whose first operation is
// GETFH with no prior PUTROOTFH/PUTFH-equivalent in this server's
// operation set, an unset current filehandle is treated as "the export
// root": GetFH mints (or reuses) the root handle, binds it as the
// current filehandle, and returns it. Once any filehandle is current,
// GETFH never mints - it only echoes.
func GetFH(ctx *types.CompoundContext, _ *bytes.Reader) *types.CompoundResult {
	if !ctx.CurrentFHSet {
		fh, err := resolveFileHandle(ctx, ctx.Export.RootPath)
		if err != nil {
			return errorResult(types.OP_GETFH, types.NFS4ERR_IO)
		}
		ctx.CurrentFH = &fh
		ctx.CurrentFHSet = true
	}

	buf := new(bytes.Buffer)
	if err := writeFileHandle(buf, *ctx.CurrentFH); err != nil {
		return errorResult(types.OP_GETFH, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_GETFH, Data: buf.Bytes()}
}

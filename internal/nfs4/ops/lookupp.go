package ops

import (
	"bytes"
	"path/filepath"

	"github.com/netkitd/netkitd/internal/nfs4/types"
)

// LookupP implements LOOKUPP: moves the current filehandle to its parent
// directory. The original server declared this operation but never
// implemented it; this server implements it fully.
//
// Calling LOOKUPP on the export root itself has no parent to ascend to
// and returns NFS4ERR_NOENT, matching how a real NFSv4 server reports
// the root of an exported filesystem.
func LookupP(ctx *types.CompoundContext, _ *bytes.Reader) *types.CompoundResult {
	path, errResult := requireCurrentFH(ctx, types.OP_LOOKUPP)
	if errResult != nil {
		return errResult
	}

	cleanRoot := filepath.Clean(ctx.Export.RootPath)
	cleanPath := filepath.Clean(path)
	if cleanPath == cleanRoot {
		return errorResult(types.OP_LOOKUPP, types.NFS4ERR_NOENT)
	}

	parent := filepath.Dir(cleanPath)
	fh, err := resolveFileHandle(ctx, parent)
	if err != nil {
		return errorResult(types.OP_LOOKUPP, types.NFS4ERR_IO)
	}
	ctx.CurrentFH = &fh
	ctx.CurrentFHSet = true

	return encodeStatusOnly(types.OP_LOOKUPP, types.NFS4_OK)
}

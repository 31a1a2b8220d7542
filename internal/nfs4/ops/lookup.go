package ops

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// Lookup implements LOOKUP: resolves a single path component under the
// current filehandle (which must be a directory) and makes the result
// the new current filehandle. The reply carries no data beyond status.
func Lookup(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	name, err := xdr.DecodeString(r)
	if err != nil {
		return errorResult(types.OP_LOOKUP, types.NFS4ERR_ERROR)
	}
	if err := validateComponentName(name); err != nil {
		return errorResult(types.OP_LOOKUP, types.NFS4ERR_BADNAME)
	}

	dirPath, errResult := requireCurrentFH(ctx, types.OP_LOOKUP)
	if errResult != nil {
		return errResult
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		return errorResult(types.OP_LOOKUP, types.NFS4ERR_NOENT)
	}
	if !info.IsDir() {
		return errorResult(types.OP_LOOKUP, types.NFS4ERR_NOENT)
	}

	childPath := filepath.Join(dirPath, name)
	if _, err := os.Lstat(childPath); err != nil {
		if os.IsNotExist(err) {
			return errorResult(types.OP_LOOKUP, types.NFS4ERR_NOENT)
		}
		return errorResult(types.OP_LOOKUP, types.NFS4ERR_IO)
	}

	fh, err := resolveFileHandle(ctx, childPath)
	if err != nil {
		return errorResult(types.OP_LOOKUP, types.NFS4ERR_IO)
	}
	ctx.CurrentFH = &fh
	ctx.CurrentFHSet = true

	return encodeStatusOnly(types.OP_LOOKUP, types.NFS4_OK)
}

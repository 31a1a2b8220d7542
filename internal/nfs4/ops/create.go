package ops

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// Create implements CREATE for non-regular file types. Regular files are
// created through OPEN with an create-if-missing openhow, matching
// NFSv4's own division of labor; this operation only handles directories.
func Create(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	if ctx.Export.ReadOnly {
		return errorResult(types.OP_CREATE, types.NFS4ERR_ROFS)
	}

	objType, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_ERROR)
	}
	if objType != types.NF4DIR {
		return errorResult(types.OP_CREATE, types.NFS4ERR_BADTYPE)
	}

	name, err := xdr.DecodeString(r)
	if err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_ERROR)
	}
	if err := validateComponentName(name); err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_BADNAME)
	}

	// createattrs: bitmap + opaque attribute values. This server applies
	// no client-specified attributes on creation, but still consumes the
	// bytes to keep the reader aligned for any trailing operations.
	if _, err := decodeBitmap(r); err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_ERROR)
	}
	if _, err := xdr.DecodeOpaque(r); err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_ERROR)
	}

	parentPath, errResult := requireCurrentFH(ctx, types.OP_CREATE)
	if errResult != nil {
		return errResult
	}

	childPath := filepath.Join(parentPath, name)
	if err := os.Mkdir(childPath, 0o755); err != nil {
		if os.IsNotExist(err) {
			return errorResult(types.OP_CREATE, types.NFS4ERR_NOENT)
		}
		return errorResult(types.OP_CREATE, types.NFS4ERR_IO)
	}

	fh, err := resolveFileHandle(ctx, childPath)
	if err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_IO)
	}
	ctx.CurrentFH = &fh
	ctx.CurrentFHSet = true

	buf := new(bytes.Buffer)
	// change_info4 { atomic=true, before=0, after=0 }; this server does
	// not track per-directory change counters.
	if err := xdr.WriteBool(buf, true); err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint64(buf, 0); err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint64(buf, 0); err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_IO)
	}
	if err := encodeBitmap(buf, 0); err != nil {
		return errorResult(types.OP_CREATE, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_CREATE, Data: buf.Bytes()}
}

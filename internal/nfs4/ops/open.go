package ops

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

const (
	openNoCreate uint32 = 0
	openCreate   uint32 = 1

	createUnchecked uint32 = 0
	createGuarded   uint32 = 1
	createExclusive uint32 = 2

	claimNull uint32 = 0

	// OPEN4_RESULT_CONFIRM, RFC 7530 section 16.16.5.
	open4ResultConfirm uint32 = 0x00000002
	openDelegateNone   uint32 = 0
)

// Open implements a simplified OPEN supporting only CLAIM_NULL claims
// against a component name in the current (directory) filehandle, with
// UNCHECKED4/GUARDED4/EXCLUSIVE4 create semantics. Every successful OPEN
// sets OPEN4_RESULT_CONFIRM, so every open owner's first open on this
// server must be followed by OPEN_CONFIRM.
func Open(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	_, err := xdr.DecodeUint32(r) // seqid; this server does not track per-owner sequencing beyond OPEN_CONFIRM
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	shareAccess, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	shareDeny, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	if _, err := xdr.DecodeUint64(r); err != nil { // owner.clientid
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	if _, err := xdr.DecodeOpaque(r); err != nil { // owner.owner
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}

	openHow, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	wantCreate := false
	createMode := createUnchecked
	if openHow == openCreate {
		wantCreate = true
		createMode, err = xdr.DecodeUint32(r)
		if err != nil {
			return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
		}
		switch createMode {
		case createUnchecked, createGuarded:
			if _, err := decodeBitmap(r); err != nil {
				return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
			}
			if _, err := xdr.DecodeOpaque(r); err != nil {
				return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
			}
		case createExclusive:
			var verifier [8]byte
			if _, err := r.Read(verifier[:]); err != nil {
				return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
			}
		default:
			return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
		}
	} else if openHow != openNoCreate {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}

	claimType, err := xdr.DecodeUint32(r)
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	if claimType != claimNull {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	name, err := xdr.DecodeString(r)
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ERROR)
	}
	if err := validateComponentName(name); err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_BADNAME)
	}

	if wantCreate && ctx.Export.ReadOnly {
		return errorResult(types.OP_OPEN, types.NFS4ERR_ROFS)
	}

	dirPath, errResult := requireCurrentFH(ctx, types.OP_OPEN)
	if errResult != nil {
		return errResult
	}
	targetPath := filepath.Join(dirPath, name)

	if err := openTarget(targetPath, wantCreate, createMode); err != nil {
		return errorResult(types.OP_OPEN, err.(openError).status)
	}

	fh, err := resolveFileHandle(ctx, targetPath)
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	ctx.CurrentFH = &fh
	ctx.CurrentFHSet = true

	stateID, err := ctx.States.Insert(types.FileState{
		Path:        targetPath,
		ShareAccess: shareAccess,
		ShareDeny:   shareDeny,
		SeqID:       0,
		Confirmed:   false,
	})
	if err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}

	buf := new(bytes.Buffer)
	if err := writeStateID(buf, stateID); err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	if err := xdr.WriteBool(buf, true); err != nil { // cinfo.atomic
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint64(buf, 0); err != nil { // cinfo.before
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint64(buf, 0); err != nil { // cinfo.after
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint32(buf, open4ResultConfirm); err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	if err := encodeBitmap(buf, 0); err != nil { // attrset
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint32(buf, openDelegateNone); err != nil {
		return errorResult(types.OP_OPEN, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_OPEN, Data: buf.Bytes()}
}

type openError struct {
	status types.Status
}

func (e openError) Error() string { return "open failed" }

func openTarget(path string, create bool, createMode uint32) error {
	if !create {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return openError{types.NFS4ERR_NOENT}
			}
			return openError{types.NFS4ERR_IO}
		}
		if info.IsDir() {
			return openError{types.NFS4ERR_IO}
		}
		return nil
	}

	flags := os.O_RDWR | os.O_CREATE
	if createMode == createGuarded || createMode == createExclusive {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return openError{types.NFS4ERR_IO}
		}
		if os.IsNotExist(err) {
			return openError{types.NFS4ERR_NOENT}
		}
		return openError{types.NFS4ERR_IO}
	}
	_ = f.Close()
	return nil
}

package ops

import (
	"bytes"
	"os"
	"strconv"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// Attribute bit numbers this server knows how to report (RFC 7530
// section 5.8, Table 5).
const (
	fattr4Type        = 1
	fattr4Size        = 4
	fattr4Fileid      = 20
	fattr4Mode        = 33
	fattr4Owner       = 36
	fattr4OwnerGroup  = 37
	fattr4SpaceUsed   = 45
	fattr4TimeAccess  = 47
	fattr4TimeModify  = 52
)

func decodeBitmap(r *bytes.Reader) (uint64, error) {
	wordCount, err := xdr.DecodeUint32(r)
	if err != nil {
		return 0, err
	}
	var mask uint64
	for i := uint32(0); i < wordCount; i++ {
		word, err := xdr.DecodeUint32(r)
		if err != nil {
			return 0, err
		}
		if i < 2 {
			mask |= uint64(word) << (32 * i)
		}
	}
	return mask, nil
}

func encodeBitmap(buf *bytes.Buffer, mask uint64) error {
	word0 := uint32(mask)
	word1 := uint32(mask >> 32)
	words := []uint32{word0}
	if word1 != 0 {
		words = append(words, word1)
	}
	if err := xdr.WriteUint32(buf, uint32(len(words))); err != nil {
		return err
	}
	for _, w := range words {
		if err := xdr.WriteUint32(buf, w); err != nil {
			return err
		}
	}
	return nil
}

func bitSet(mask uint64, bit int) bool {
	return mask&(1<<uint(bit)) != 0
}

// GetAttr implements GETATTR. This server ignores the requested bitmap
// and always returns the full attribute struct it knows how to compute:
// file type, mode bits, size, space used, access/modify time, a fileid
// taken from the inode number, and owner/group as decimal
// uid/gid strings.
func GetAttr(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult {
	if _, err := decodeBitmap(r); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_ERROR)
	}

	path, errResult := requireCurrentFH(ctx, types.OP_GETATTR)
	if errResult != nil {
		return errResult
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult(types.OP_GETATTR, types.NFS4ERR_NOENT)
		}
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrs := posixAttrs(info)

	var attrset uint64
	values := new(bytes.Buffer)

	attrset |= 1 << fattr4Type
	fileType := types.NF4REG
	if info.IsDir() {
		fileType = types.NF4DIR
	}
	if err := xdr.WriteUint32(values, fileType); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4Size
	if err := xdr.WriteUint64(values, attrs.Size); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4Fileid
	if err := xdr.WriteUint64(values, fileID(info)); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4Mode
	if err := xdr.WriteUint32(values, attrs.Mode); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4SpaceUsed
	if err := xdr.WriteUint64(values, attrs.SpaceUsed); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4TimeAccess
	if err := xdr.WriteUint64(values, attrs.ATimeSec); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint32(values, attrs.ATimeNsec); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4TimeModify
	if err := xdr.WriteUint64(values, attrs.MTimeSec); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}
	if err := xdr.WriteUint32(values, attrs.MTimeNsec); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4Owner
	if err := xdr.WriteXDRString(values, strconv.FormatUint(uint64(attrs.UID), 10)); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	attrset |= 1 << fattr4OwnerGroup
	if err := xdr.WriteXDRString(values, strconv.FormatUint(uint64(attrs.GID), 10)); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}

	buf := new(bytes.Buffer)
	if err := encodeBitmap(buf, attrset); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}
	if err := xdr.WriteXDROpaque(buf, values.Bytes()); err != nil {
		return errorResult(types.OP_GETATTR, types.NFS4ERR_IO)
	}
	return &types.CompoundResult{Status: types.NFS4_OK, OpCode: types.OP_GETATTR, Data: buf.Bytes()}
}

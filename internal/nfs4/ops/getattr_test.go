package ops

import (
	"bytes"
	"testing"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeBitmapArgs(t *testing.T, mask uint64) *bytes.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, encodeBitmap(buf, mask))
	return bytes.NewReader(buf.Bytes())
}

func TestGetAttr_ReportsFullAttributeStructForRegularFile(t *testing.T) {
	ctx := newTestContext(t)
	path := writeTestFile(t, ctx.Export.RootPath, "f", []byte("hello"))
	withCurrentFH(t, ctx, path)

	// The requested bitmap is ignored; this server always returns the
	// full struct it knows how to compute.
	args := encodeBitmapArgs(t, 1<<fattr4Type)

	result := GetAttr(ctx, args)
	require.Equal(t, types.NFS4_OK, result.Status)

	reader := bytesReader(result.Data)
	attrset, err := decodeBitmap(reader)
	require.NoError(t, err)
	for _, bit := range []int{fattr4Type, fattr4Size, fattr4Fileid, fattr4Mode, fattr4SpaceUsed, fattr4TimeAccess, fattr4TimeModify, fattr4Owner, fattr4OwnerGroup} {
		assert.True(t, bitSet(attrset, bit), "expected attr bit %d to be set", bit)
	}

	values, err := xdr.DecodeOpaque(reader)
	require.NoError(t, err)
	valueReader := bytesReader(values)

	fileType, err := xdr.DecodeUint32(valueReader)
	require.NoError(t, err)
	assert.Equal(t, types.NF4REG, fileType)

	size, err := xdr.DecodeUint64(valueReader)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), size)

	_, err = xdr.DecodeUint64(valueReader) // fileid
	require.NoError(t, err)

	mode, err := xdr.DecodeUint32(valueReader)
	require.NoError(t, err)
	assert.NotEqual(t, uint32(0), mode)

	_, err = xdr.DecodeUint64(valueReader) // space_used
	require.NoError(t, err)

	_, err = xdr.DecodeUint64(valueReader) // time_access seconds
	require.NoError(t, err)
	_, err = xdr.DecodeUint32(valueReader) // time_access nseconds
	require.NoError(t, err)

	_, err = xdr.DecodeUint64(valueReader) // time_modify seconds
	require.NoError(t, err)
	_, err = xdr.DecodeUint32(valueReader) // time_modify nseconds
	require.NoError(t, err)

	owner, err := xdr.DecodeString(valueReader)
	require.NoError(t, err)
	assert.NotEmpty(t, owner)

	group, err := xdr.DecodeString(valueReader)
	require.NoError(t, err)
	assert.NotEmpty(t, group)
}

func TestGetAttr_DirectoryType(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	args := encodeBitmapArgs(t, 1<<fattr4Type)
	result := GetAttr(ctx, args)
	require.Equal(t, types.NFS4_OK, result.Status)

	reader := bytesReader(result.Data)
	_, err := decodeBitmap(reader)
	require.NoError(t, err)
	values, err := xdr.DecodeOpaque(reader)
	require.NoError(t, err)

	fileType, err := xdr.DecodeUint32(bytesReader(values))
	require.NoError(t, err)
	assert.Equal(t, types.NF4DIR, fileType)
}

func TestGetAttr_NoCurrentFilehandle(t *testing.T) {
	ctx := newTestContext(t)
	args := encodeBitmapArgs(t, 1<<fattr4Type)

	result := GetAttr(ctx, args)
	assert.Equal(t, types.NFS4ERR_BADHANDLE, result.Status)
}

func TestGetAttr_StaleFilehandle(t *testing.T) {
	ctx := newTestContext(t)
	fh := withCurrentFH(t, ctx, filepathJoin(ctx.Export.RootPath, "somewhere"))
	ctx.Handles.Unbind(fh)

	args := encodeBitmapArgs(t, 1<<fattr4Type)
	result := GetAttr(ctx, args)
	assert.Equal(t, types.NFS4ERR_STALE, result.Status)
}

func TestGetAttr_PathGoneAfterBind(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, filepathJoin(ctx.Export.RootPath, "gone"))

	args := encodeBitmapArgs(t, 1<<fattr4Type)
	result := GetAttr(ctx, args)
	assert.Equal(t, types.NFS4ERR_NOENT, result.Status)
}

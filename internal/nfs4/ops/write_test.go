package ops

import (
	"os"
	"testing"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_AnonymousWriteUnstable(t *testing.T) {
	ctx := newTestContext(t)
	path := writeTestFile(t, ctx.Export.RootPath, "f", make([]byte, 10))
	withCurrentFH(t, ctx, path)

	r := encodeArgs(t, argStateID(types.StateID{}), argUint64(0), argUint32(unstable4), argOpaque([]byte("data")))

	result := Write(ctx, r)
	require.Equal(t, types.NFS4_OK, result.Status)

	reader := bytesReader(result.Data)
	n, err := xdr.DecodeUint32(reader)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), n)
	committed, err := xdr.DecodeUint32(reader)
	require.NoError(t, err)
	assert.Equal(t, unstable4, committed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), content[:4])
}

func TestWrite_FileSyncReportsFileSync(t *testing.T) {
	ctx := newTestContext(t)
	path := writeTestFile(t, ctx.Export.RootPath, "f", make([]byte, 10))
	withCurrentFH(t, ctx, path)

	r := encodeArgs(t, argStateID(types.StateID{}), argUint64(0), argUint32(fileSync4), argOpaque([]byte("abcd")))

	result := Write(ctx, r)
	require.Equal(t, types.NFS4_OK, result.Status)

	reader := bytesReader(result.Data)
	_, err := xdr.DecodeUint32(reader)
	require.NoError(t, err)
	committed, err := xdr.DecodeUint32(reader)
	require.NoError(t, err)
	assert.Equal(t, fileSync4, committed)
}

func TestWrite_RejectsOnReadOnlyExport(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Export.ReadOnly = true
	path := writeTestFile(t, ctx.Export.RootPath, "f", nil)
	withCurrentFH(t, ctx, path)

	r := encodeArgs(t, argStateID(types.StateID{}), argUint64(0), argUint32(unstable4), argOpaque([]byte("x")))

	result := Write(ctx, r)
	assert.Equal(t, types.NFS4ERR_ROFS, result.Status)
}

func TestWrite_RejectsOversizedPayload(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Export.MaxWriteSize = 2
	path := writeTestFile(t, ctx.Export.RootPath, "f", nil)
	withCurrentFH(t, ctx, path)

	r := encodeArgs(t, argStateID(types.StateID{}), argUint64(0), argUint32(unstable4), argOpaque([]byte("abc")))

	result := Write(ctx, r)
	assert.Equal(t, types.NFS4ERR_ERROR, result.Status)
}

func TestWrite_RejectsMismatchedStateID(t *testing.T) {
	ctx := newTestContext(t)
	path := writeTestFile(t, ctx.Export.RootPath, "f", nil)
	withCurrentFH(t, ctx, path)

	id, err := ctx.States.Insert(types.FileState{Path: "/other", Confirmed: true})
	require.NoError(t, err)

	r := encodeArgs(t, argStateID(id), argUint64(0), argUint32(unstable4), argOpaque([]byte("x")))

	result := Write(ctx, r)
	assert.Equal(t, types.NFS4ERR_BAD_STATEID, result.Status)
}

// An OPEN that was never confirmed with OPEN_CONFIRM must still allow a
// WRITE against the stateid it minted, matching the round trip
// OPEN -> WRITE -> CLOSE that never calls OPEN_CONFIRM.
func TestWrite_AllowsWriteWithUnconfirmedOpenStateID(t *testing.T) {
	ctx := newTestContext(t)
	path := writeTestFile(t, ctx.Export.RootPath, "f", make([]byte, 4))
	withCurrentFH(t, ctx, path)

	id, err := ctx.States.Insert(types.FileState{Path: path, Confirmed: false})
	require.NoError(t, err)

	r := encodeArgs(t, argStateID(id), argUint64(0), argUint32(unstable4), argOpaque([]byte("data")))

	result := Write(ctx, r)
	require.Equal(t, types.NFS4_OK, result.Status)
}

func TestWrite_MissingFile(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, filepathJoin(ctx.Export.RootPath, "gone"))

	r := encodeArgs(t, argStateID(types.StateID{}), argUint64(0), argUint32(unstable4), argOpaque([]byte("x")))

	result := Write(ctx, r)
	assert.Equal(t, types.NFS4ERR_NOENT, result.Status)
}

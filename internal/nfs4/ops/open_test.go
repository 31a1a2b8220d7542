package ops

import (
	"bytes"
	"testing"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openArgsNoCreate(t *testing.T, name string) *bytes.Reader {
	t.Helper()
	return encodeArgs(t,
		argUint32(1),                    // seqid
		argUint32(types.ACCESS4_READ),   // share_access
		argUint32(0),                    // share_deny
		argUint64(0),                    // owner.clientid
		argOpaque([]byte("owner")),      // owner.owner
		argUint32(openNoCreate),         // openhow
		argUint32(claimNull),            // claim type
		argString(name),
	)
}

func openArgsCreate(t *testing.T, name string, createMode uint32) *bytes.Reader {
	t.Helper()
	writers := []func(*bytes.Buffer) error{
		argUint32(1),
		argUint32(types.ACCESS4_READ | types.ACCESS4_MODIFY),
		argUint32(0),
		argUint64(0),
		argOpaque([]byte("owner")),
		argUint32(openCreate),
		argUint32(createMode),
	}
	if createMode == createExclusive {
		writers = append(writers, argRaw(make([]byte, 8)))
	} else {
		writers = append(writers, emptyBitmapAndAttrs()...)
	}
	writers = append(writers, argUint32(claimNull), argString(name))
	return encodeArgs(t, writers...)
}

func TestOpen_NoCreateOnExistingFile(t *testing.T) {
	ctx := newTestContext(t)
	writeTestFile(t, ctx.Export.RootPath, "f", []byte("data"))
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Open(ctx, openArgsNoCreate(t, "f"))
	require.Equal(t, types.NFS4_OK, result.Status)

	_, ok := ctx.Handles.Resolve(*ctx.CurrentFH)
	assert.True(t, ok)
}

func TestOpen_NoCreateMissingFile(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Open(ctx, openArgsNoCreate(t, "missing"))
	assert.Equal(t, types.NFS4ERR_NOENT, result.Status)
}

func TestOpen_NoCreateOnDirectoryIsRejected(t *testing.T) {
	ctx := newTestContext(t)
	mkTestDir(t, ctx.Export.RootPath, "sub")
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Open(ctx, openArgsNoCreate(t, "sub"))
	assert.Equal(t, types.NFS4ERR_IO, result.Status)
}

func TestOpen_CreateUnchecked_MintsConfirmableState(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Open(ctx, openArgsCreate(t, "newfile", createUnchecked))
	require.Equal(t, types.NFS4_OK, result.Status)

	path, ok := ctx.Handles.Resolve(*ctx.CurrentFH)
	require.True(t, ok)
	assert.FileExists(t, path)
}

func TestOpen_CreateGuarded_RejectsExistingFile(t *testing.T) {
	ctx := newTestContext(t)
	writeTestFile(t, ctx.Export.RootPath, "exists", []byte("x"))
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Open(ctx, openArgsCreate(t, "exists", createGuarded))
	assert.Equal(t, types.NFS4ERR_IO, result.Status)
}

func TestOpen_RejectsCreateOnReadOnlyExport(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Export.ReadOnly = true
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Open(ctx, openArgsCreate(t, "newfile", createUnchecked))
	assert.Equal(t, types.NFS4ERR_ROFS, result.Status)
}

func TestOpen_RejectsInvalidComponentName(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Open(ctx, openArgsNoCreate(t, "../escape"))
	assert.Equal(t, types.NFS4ERR_BADNAME, result.Status)
}

func TestOpen_NoCurrentFilehandle(t *testing.T) {
	ctx := newTestContext(t)
	result := Open(ctx, openArgsNoCreate(t, "f"))
	assert.Equal(t, types.NFS4ERR_BADHANDLE, result.Status)
}

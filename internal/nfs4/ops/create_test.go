package ops

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createObjArgs(t *testing.T, objType uint32, name string) *bytes.Reader {
	t.Helper()
	writers := []func(*bytes.Buffer) error{
		argUint32(objType),
		argString(name),
	}
	writers = append(writers, emptyBitmapAndAttrs()...)
	return encodeArgs(t, writers...)
}

func TestCreate_MakesDirectory(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Create(ctx, createObjArgs(t, types.NF4DIR, "newdir"))
	require.Equal(t, types.NFS4_OK, result.Status)

	info, err := os.Stat(filepath.Join(ctx.Export.RootPath, "newdir"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	path, ok := ctx.Handles.Resolve(*ctx.CurrentFH)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(ctx.Export.RootPath, "newdir"), path)
}

func TestCreate_RejectsNonDirectoryType(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Create(ctx, createObjArgs(t, types.NF4REG, "file"))
	assert.Equal(t, types.NFS4ERR_BADTYPE, result.Status)
}

func TestCreate_RejectsExistingName(t *testing.T) {
	ctx := newTestContext(t)
	mkTestDir(t, ctx.Export.RootPath, "dup")
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Create(ctx, createObjArgs(t, types.NF4DIR, "dup"))
	assert.Equal(t, types.NFS4ERR_IO, result.Status)
}

func TestCreate_RejectsOnReadOnlyExport(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Export.ReadOnly = true
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Create(ctx, createObjArgs(t, types.NF4DIR, "newdir"))
	assert.Equal(t, types.NFS4ERR_ROFS, result.Status)
}

func TestCreate_RejectsInvalidComponentName(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Create(ctx, createObjArgs(t, types.NF4DIR, "a/b"))
	assert.Equal(t, types.NFS4ERR_BADNAME, result.Status)
}

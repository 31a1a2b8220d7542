package ops

import (
	"path/filepath"
	"testing"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_ResolvesChildAndUpdatesCurrentFH(t *testing.T) {
	ctx := newTestContext(t)
	writeTestFile(t, ctx.Export.RootPath, "child.txt", []byte("x"))
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Lookup(ctx, encodeArgs(t, argString("child.txt")))
	require.Equal(t, types.NFS4_OK, result.Status)

	path, ok := ctx.Handles.Resolve(*ctx.CurrentFH)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(ctx.Export.RootPath, "child.txt"), path)
}

func TestLookup_NoSuchEntry(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	result := Lookup(ctx, encodeArgs(t, argString("missing")))
	assert.Equal(t, types.NFS4ERR_NOENT, result.Status)
}

func TestLookup_CurrentFHNotADirectory(t *testing.T) {
	ctx := newTestContext(t)
	path := writeTestFile(t, ctx.Export.RootPath, "f", []byte("x"))
	withCurrentFH(t, ctx, path)

	result := Lookup(ctx, encodeArgs(t, argString("anything")))
	assert.Equal(t, types.NFS4ERR_NOENT, result.Status)
}

func TestLookup_RejectsInvalidComponentName(t *testing.T) {
	ctx := newTestContext(t)
	withCurrentFH(t, ctx, ctx.Export.RootPath)

	for _, name := range []string{"", ".", "..", "a/b"} {
		result := Lookup(ctx, encodeArgs(t, argString(name)))
		assert.Equal(t, types.NFS4ERR_BADNAME, result.Status, "name=%q", name)
	}
}

func TestLookup_NoCurrentFilehandle(t *testing.T) {
	ctx := newTestContext(t)
	result := Lookup(ctx, encodeArgs(t, argString("x")))
	assert.Equal(t, types.NFS4ERR_BADHANDLE, result.Status)
}

package ops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/netkitd/netkitd/internal/nfs4/handle"
	"github.com/netkitd/netkitd/internal/nfs4/state"
	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
	"github.com/stretchr/testify/require"
)

// newTestContext returns a CompoundContext rooted at a fresh temp
// directory, with no current filehandle set.
func newTestContext(t *testing.T) *types.CompoundContext {
	t.Helper()
	root := t.TempDir()
	return &types.CompoundContext{
		Ctx:     context.Background(),
		Handles: handle.New(),
		States:  state.New(),
		Export: types.ExportConfig{
			RootPath: root,
		},
	}
}

// withCurrentFH binds path as the current filehandle on ctx and returns
// the minted handle.
func withCurrentFH(t *testing.T, ctx *types.CompoundContext, path string) types.FileHandle {
	t.Helper()
	fh, err := ctx.Handles.Bind(path)
	require.NoError(t, err)
	ctx.CurrentFH = &fh
	ctx.CurrentFHSet = true
	return fh
}

func writeTestFile(t *testing.T, root, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func mkTestDir(t *testing.T, root, name string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.Mkdir(path, 0o755))
	return path
}

func emptyArgsReader() *bytes.Reader {
	return bytes.NewReader(nil)
}

func bytesReader(data []byte) *bytes.Reader {
	return bytes.NewReader(data)
}

func filepathJoin(elem ...string) string {
	return filepath.Join(elem...)
}

func encodeArgs(t *testing.T, writers ...func(*bytes.Buffer) error) *bytes.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	for _, w := range writers {
		require.NoError(t, w(buf))
	}
	return bytes.NewReader(buf.Bytes())
}

func argUint32(v uint32) func(*bytes.Buffer) error {
	return func(buf *bytes.Buffer) error { return xdr.WriteUint32(buf, v) }
}

func argUint64(v uint64) func(*bytes.Buffer) error {
	return func(buf *bytes.Buffer) error { return xdr.WriteUint64(buf, v) }
}

func argString(s string) func(*bytes.Buffer) error {
	return func(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, s) }
}

func argOpaque(b []byte) func(*bytes.Buffer) error {
	return func(buf *bytes.Buffer) error { return xdr.WriteXDROpaque(buf, b) }
}

func argRaw(b []byte) func(*bytes.Buffer) error {
	return func(buf *bytes.Buffer) error { _, err := buf.Write(b); return err }
}

func argStateID(id types.StateID) func(*bytes.Buffer) error {
	return func(buf *bytes.Buffer) error { return writeStateID(buf, id) }
}

// emptyBitmapAndAttrs encodes a zero-length attribute bitmap followed by
// a zero-length opaque attribute value list, as CREATE and OPEN's
// createattrs arm expects.
func emptyBitmapAndAttrs() []func(*bytes.Buffer) error {
	return []func(*bytes.Buffer) error{
		argUint32(0),
		argOpaque(nil),
	}
}

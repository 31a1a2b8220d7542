// Package ops implements the NFSv4.0 operation handlers this server
// supports: ACCESS, CLOSE, COMMIT, CREATE, GETATTR, GETFH, LOOKUP,
// LOOKUPP, OPEN, OPEN_CONFIRM, READ and WRITE.
package ops

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// fileStatAttrs is the POSIX metadata a stat result carries, populated by
// the platform-specific posixAttrs implementations.
type fileStatAttrs struct {
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint64
	SpaceUsed uint64
	ATimeSec  uint64
	ATimeNsec uint32
	MTimeSec  uint64
	MTimeNsec uint32
}

// effectiveIDs returns the server process's own effective uid/gid, the
// identity ACCESS evaluates POSIX mode bits against.
func effectiveIDs() (uid, gid uint32) {
	return uint32(os.Geteuid()), uint32(os.Getegid())
}

func encodeStatusOnly(opCode types.OpCode, status types.Status) *types.CompoundResult {
	return &types.CompoundResult{Status: status, OpCode: opCode, Data: nil}
}

func errorResult(opCode types.OpCode, status types.Status) *types.CompoundResult {
	return encodeStatusOnly(opCode, status)
}

// requireCurrentFH returns the path the current filehandle resolves to,
// or an error result if no current filehandle is set or it has gone stale.
func requireCurrentFH(ctx *types.CompoundContext, opCode types.OpCode) (string, *types.CompoundResult) {
	if !ctx.CurrentFHSet {
		return "", errorResult(opCode, types.NFS4ERR_BADHANDLE)
	}
	path, ok := ctx.Handles.Resolve(*ctx.CurrentFH)
	if !ok {
		return "", errorResult(opCode, types.NFS4ERR_STALE)
	}
	return path, nil
}

// validateComponentName rejects names that would let a client escape the
// export root or address directory entries by special meaning: empty
// names, names containing a path separator, and "." or "..".
func validateComponentName(name string) error {
	if name == "" {
		return fmt.Errorf("empty component name")
	}
	if len(name) > 255 {
		return fmt.Errorf("component name too long")
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("component name contains a path separator")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("component name is a relative directory reference")
	}
	return nil
}

// resolveFileHandle mints or reuses the handle bound to path. It does not
// check path itself; callers validate the component name before joining
// it onto a path beneath the export root.
func resolveFileHandle(ctx *types.CompoundContext, path string) (types.FileHandle, error) {
	return ctx.Handles.Bind(path)
}

func decodeStateID(r *bytes.Reader) (types.StateID, error) {
	var id types.StateID
	if _, err := r.Read(id[:]); err != nil {
		return id, fmt.Errorf("decode stateid: %w", err)
	}
	return id, nil
}

func writeStateID(buf *bytes.Buffer, id types.StateID) error {
	_, err := buf.Write(id[:])
	return err
}

func writeFileHandle(buf *bytes.Buffer, fh types.FileHandle) error {
	return xdr.WriteXDROpaque(buf, fh[:])
}

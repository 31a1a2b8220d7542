// Package handle implements the process-wide filehandle table: the
// bidirectional map between opaque 16-byte tokens handed to clients and
// the real filesystem paths they designate, confined to a single export
// root.
package handle

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/netkitd/netkitd/internal/nfs4/types"
)

const maxMintAttempts = 8

// Table is a single-writer/multi-reader-guarded map from filehandle to
// export-relative path, plus the reverse map needed to avoid minting two
// handles for the same path.
type Table struct {
	mu       sync.RWMutex
	byHandle map[types.FileHandle]string
	byPath   map[string]types.FileHandle
}

// New returns an empty handle table.
func New() *Table {
	return &Table{
		byHandle: make(map[types.FileHandle]string),
		byPath:   make(map[string]types.FileHandle),
	}
}

// Resolve returns the path bound to fh, if any.
func (t *Table) Resolve(fh types.FileHandle) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	path, ok := t.byHandle[fh]
	return path, ok
}

// Bind returns the existing handle for path if one was already minted,
// or mints and stores a fresh one otherwise. path must already have been
// validated as confined to the export root by the caller.
func (t *Table) Bind(path string) (types.FileHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fh, ok := t.byPath[path]; ok {
		return fh, nil
	}

	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		var fh types.FileHandle
		if _, err := rand.Read(fh[:]); err != nil {
			return types.FileHandle{}, fmt.Errorf("bind handle: generate random handle: %w", err)
		}
		if _, collision := t.byHandle[fh]; collision {
			continue
		}
		t.byHandle[fh] = path
		t.byPath[path] = fh
		return fh, nil
	}
	return types.FileHandle{}, fmt.Errorf("bind handle: failed to mint unique handle after %d attempts", maxMintAttempts)
}

// Unbind removes fh and its reverse mapping, e.g. after the file it names
// is removed.
func (t *Table) Unbind(fh types.FileHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	path, ok := t.byHandle[fh]
	if !ok {
		return
	}
	delete(t.byHandle, fh)
	delete(t.byPath, path)
}

// Rebind updates the path a handle resolves to. No operation handler
// calls it; CREATE, LOOKUP and OPEN obtain handles through Bind.
func (t *Table) Rebind(fh types.FileHandle, newPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if oldPath, ok := t.byHandle[fh]; ok {
		delete(t.byPath, oldPath)
	}
	t.byHandle[fh] = newPath
	t.byPath[newPath] = fh
}

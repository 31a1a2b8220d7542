// Package state implements the process-wide stateid table: the record
// of every outstanding OPEN instance, keyed by a 16-byte stateid.
package state

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/netkitd/netkitd/internal/nfs4/types"
)

const maxMintAttempts = 8

// Table is a single-writer/multi-reader-guarded map from stateid to
// open-instance record.
type Table struct {
	mu    sync.RWMutex
	byID  map[types.StateID]types.FileState
}

// New returns an empty stateid table.
func New() *Table {
	return &Table{byID: make(map[types.StateID]types.FileState)}
}

// Lookup returns the state record for id, if any.
func (t *Table) Lookup(id types.StateID) (types.FileState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byID[id]
	return s, ok
}

// Insert mints a fresh stateid for the given open instance.
func (t *Table) Insert(s types.FileState) (types.StateID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		var id types.StateID
		if _, err := rand.Read(id[:]); err != nil {
			return types.StateID{}, fmt.Errorf("insert state: generate random stateid: %w", err)
		}
		if _, collision := t.byID[id]; collision {
			continue
		}
		t.byID[id] = s
		return id, nil
	}
	return types.StateID{}, fmt.Errorf("insert state: failed to mint unique stateid after %d attempts", maxMintAttempts)
}

// Update replaces the record stored under id, e.g. to bump SeqID or flip
// Confirmed after OPEN_CONFIRM.
func (t *Table) Update(id types.StateID, s types.FileState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return fmt.Errorf("update state: unknown stateid")
	}
	t.byID[id] = s
	return nil
}

// Remove deletes the record for id, e.g. on CLOSE.
func (t *Table) Remove(id types.StateID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byID, id)
}

package types

import "context"

// FileHandle is an opaque, server-issued token identifying a file or
// directory within the single export root this server serves.
type FileHandle [16]byte

// StateID is the 16-byte identifier of an open-owner's open instance.
type StateID [16]byte

// CompoundContext carries the state threaded through a single COMPOUND
// request: the current and saved filehandle cursors, the caller's
// credentials, and the shared tables an operation handler may consult.
type CompoundContext struct {
	Ctx context.Context

	CurrentFH    *FileHandle
	CurrentFHSet bool
	SavedFH      *FileHandle
	SavedFHSet   bool

	ClientAddr string
	Credential Credential

	Handles *HandleTable
	States  *StateTable
	Export  ExportConfig
}

// Credential is the caller identity extracted from the RPC credential.
type Credential struct {
	UID uint32
	GID uint32
}

// ExportConfig describes the single filesystem tree this server exports.
type ExportConfig struct {
	RootPath     string
	MaxReadSize  uint32
	MaxWriteSize uint32
	ReadOnly     bool

	// WriteVerifier is generated fresh each time the server starts and
	// echoed in WRITE and COMMIT replies; a client sees it change across
	// a restart and knows to resend any writes it hadn't yet committed.
	WriteVerifier [8]byte
}

// CompoundResult is the outcome of a single operation within a COMPOUND:
// a status, the operation's own opcode (echoed in the reply), and the
// already-XDR-encoded result body (nil when status is not NFS4_OK, except
// for operations whose arm has a fixed-size error-only body).
type CompoundResult struct {
	Status Status
	OpCode OpCode
	Data   []byte
}

// HandleTable and StateTable are declared here (rather than imported from
// the handle/state packages) to break the import cycle between types and
// the packages that implement them; handle.Table and state.Table satisfy
// these interfaces.
type HandleTable interface {
	Resolve(FileHandle) (string, bool)
	Bind(path string) (FileHandle, error)
	Unbind(FileHandle)
}

type StateTable interface {
	Lookup(StateID) (FileState, bool)
	Insert(FileState) (StateID, error)
	Update(StateID, FileState) error
	Remove(StateID)
}

// FileState is the process-wide record of one open instance.
type FileState struct {
	Path         string
	ShareAccess  uint32
	ShareDeny    uint32
	SeqID        uint32
	Confirmed    bool
}

package ops

import (
	"github.com/netkitd/netkitd/internal/nfs4/compound"
	"github.com/netkitd/netkitd/internal/nfs4/types"
)

// Dispatch returns the full operation table for this server's NFSv4.0
// subset, suitable for compound.Execute.
func Dispatch() compound.Dispatcher {
	return compound.Dispatcher{
		types.OP_ACCESS:       Access,
		types.OP_CLOSE:        Close,
		types.OP_COMMIT:       Commit,
		types.OP_CREATE:       Create,
		types.OP_GETATTR:      GetAttr,
		types.OP_GETFH:        GetFH,
		types.OP_LOOKUP:       Lookup,
		types.OP_LOOKUPP:      LookupP,
		types.OP_OPEN:         Open,
		types.OP_OPEN_CONFIRM: OpenConfirm,
		types.OP_READ:         Read,
		types.OP_WRITE:        Write,
	}
}

// Package compound implements the COMPOUND request executor: it walks
// the ordered operation list of a single NFSv4 COMPOUND call, threading
// the current-filehandle cursor between operations and stopping at the
// first operation that does not return NFS4_OK.
package compound

import (
	"bytes"
	"fmt"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/xdr"
)

// OpHandler decodes one operation's arguments from r, executes it
// against ctx, and returns its result. It never returns a nil result.
type OpHandler func(ctx *types.CompoundContext, r *bytes.Reader) *types.CompoundResult

// Dispatcher maps an NFSv4 operation number to its handler.
type Dispatcher map[types.OpCode]OpHandler

// Execute runs every operation in the COMPOUND body against ctx using
// dispatch, and returns the overall status (the first non-OK status, or
// NFS4_OK if every operation succeeded) along with the per-operation
// results in call order.
func Execute(ctx *types.CompoundContext, dispatch Dispatcher, body *bytes.Reader) (types.Status, []types.CompoundResult, error) {
	opCount, err := xdr.DecodeUint32(body)
	if err != nil {
		return 0, nil, fmt.Errorf("execute compound: read op count: %w", err)
	}

	results := make([]types.CompoundResult, 0, opCount)
	overall := types.NFS4_OK

	for i := uint32(0); i < opCount; i++ {
		opNum, err := xdr.DecodeUint32(body)
		if err != nil {
			return 0, nil, fmt.Errorf("execute compound: read op %d number: %w", i, err)
		}
		opCode := types.OpCode(opNum)

		handler, ok := dispatch[opCode]
		if !ok {
			result := notSupportedResult(opCode)
			results = append(results, *result)
			overall = result.Status
			break
		}

		result := handler(ctx, body)
		results = append(results, *result)
		if result.Status != types.NFS4_OK {
			overall = result.Status
			break
		}
	}

	return overall, results, nil
}

// notSupportedResult is returned for an operation number this server's
// dispatch table has no handler for; the spec's handlers-that-don't-match
// rule maps any unrecognized operation to the generic error status.
func notSupportedResult(opCode types.OpCode) *types.CompoundResult {
	return &types.CompoundResult{Status: types.NFS4ERR_ERROR, OpCode: opCode, Data: nil}
}

// EncodeResults writes the COMPOUND reply body: status, the given tag
// string, and each operation's opcode + status + data.
func EncodeResults(status types.Status, tag string, results []types.CompoundResult) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := xdr.WriteUint32(buf, uint32(status)); err != nil {
		return nil, fmt.Errorf("encode compound: status: %w", err)
	}
	if err := xdr.WriteXDRString(buf, tag); err != nil {
		return nil, fmt.Errorf("encode compound: tag: %w", err)
	}
	if err := xdr.WriteUint32(buf, uint32(len(results))); err != nil {
		return nil, fmt.Errorf("encode compound: result count: %w", err)
	}
	for i, r := range results {
		if err := xdr.WriteUint32(buf, uint32(r.OpCode)); err != nil {
			return nil, fmt.Errorf("encode compound: result %d opcode: %w", i, err)
		}
		if err := xdr.WriteUint32(buf, uint32(r.Status)); err != nil {
			return nil, fmt.Errorf("encode compound: result %d status: %w", i, err)
		}
		if _, err := buf.Write(r.Data); err != nil {
			return nil, fmt.Errorf("encode compound: result %d data: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

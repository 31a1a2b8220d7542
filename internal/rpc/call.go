package rpc

import (
	"bytes"
	"fmt"

	"github.com/netkitd/netkitd/internal/xdr"
)

// ReadCall parses the RPC call header from a complete RPC message and
// returns it along with the byte offset of the first procedure-specific
// argument.
func ReadCall(message []byte) (*RPCCallMessage, error) {
	r := bytes.NewReader(message)

	xid, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read call: xid: %w", err)
	}
	msgType, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read call: msg type: %w", err)
	}
	if msgType != RPCCall {
		return nil, fmt.Errorf("read call: expected CALL (0), got %d", msgType)
	}
	rpcVers, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read call: rpc version: %w", err)
	}
	if rpcVers != rpcVersion {
		return nil, fmt.Errorf("read call: unsupported rpc version %d", rpcVers)
	}
	program, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read call: program: %w", err)
	}
	version, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read call: version: %w", err)
	}
	procedure, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read call: procedure: %w", err)
	}

	cred, err := readOpaqueAuth(r)
	if err != nil {
		return nil, fmt.Errorf("read call: credential: %w", err)
	}
	verf, err := readOpaqueAuth(r)
	if err != nil {
		return nil, fmt.Errorf("read call: verifier: %w", err)
	}

	return &RPCCallMessage{
		XID:        xid,
		RPCVersion: rpcVers,
		Program:    program,
		Version:    version,
		Procedure:  procedure,
		Credential: *cred,
		Verifier:   *verf,
		bodyOffset: len(message) - r.Len(),
	}, nil
}

// ReadData returns the procedure-specific argument bytes that follow the
// RPC call header already parsed into call.
func ReadData(message []byte, call *RPCCallMessage) ([]byte, error) {
	if call.bodyOffset > len(message) {
		return nil, fmt.Errorf("read data: body offset %d exceeds message length %d", call.bodyOffset, len(message))
	}
	return message[call.bodyOffset:], nil
}

func readOpaqueAuth(r *bytes.Reader) (*OpaqueAuth, error) {
	flavor, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("flavor: %w", err)
	}
	body, err := xdr.DecodeOpaque(r)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	return &OpaqueAuth{Flavor: flavor, Body: body}, nil
}

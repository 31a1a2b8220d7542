package rpc

import (
	"bytes"
	"fmt"

	"github.com/netkitd/netkitd/internal/xdr"
)

// MakeSuccessReply builds a complete fragment-framed RPC reply carrying
// RPC_SUCCESS and the given procedure result bytes.
func MakeSuccessReply(xid uint32, result []byte) ([]byte, error) {
	body := new(bytes.Buffer)
	if err := writeAcceptedReplyHeader(body, xid, RPCSuccess); err != nil {
		return nil, err
	}
	if _, err := body.Write(result); err != nil {
		return nil, fmt.Errorf("make success reply: write result: %w", err)
	}
	return frame(body.Bytes())
}

// MakeAcceptedErrorReply builds a reply whose accept_stat is something
// other than RPC_SUCCESS (PROG_UNAVAIL, PROC_UNAVAIL, GARBAGE_ARGS,
// SYSTEM_ERR) and carries no result body.
func MakeAcceptedErrorReply(xid uint32, acceptStat uint32) ([]byte, error) {
	body := new(bytes.Buffer)
	if err := writeAcceptedReplyHeader(body, xid, acceptStat); err != nil {
		return nil, err
	}
	return frame(body.Bytes())
}

// MakeProgMismatchReply builds an RFC 5531 PROG_MISMATCH reply, echoing
// the client's XID and reporting the supported version range.
func MakeProgMismatchReply(xid uint32, lowVersion, highVersion uint32) ([]byte, error) {
	if lowVersion > highVersion {
		return nil, fmt.Errorf("make prog mismatch reply: invalid version range: low (%d) > high (%d)", lowVersion, highVersion)
	}

	body := new(bytes.Buffer)
	if err := writeAcceptedReplyHeader(body, xid, RPCProgMismatch); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(body, lowVersion); err != nil {
		return nil, fmt.Errorf("make prog mismatch reply: low version: %w", err)
	}
	if err := xdr.WriteUint32(body, highVersion); err != nil {
		return nil, fmt.Errorf("make prog mismatch reply: high version: %w", err)
	}
	return frame(body.Bytes())
}

// writeAcceptedReplyHeader writes XID, MsgType=REPLY, ReplyState=MSG_ACCEPTED,
// a null verifier, and the given accept_stat.
func writeAcceptedReplyHeader(buf *bytes.Buffer, xid uint32, acceptStat uint32) error {
	if err := xdr.WriteUint32(buf, xid); err != nil {
		return fmt.Errorf("xid: %w", err)
	}
	if err := xdr.WriteUint32(buf, RPCReply); err != nil {
		return fmt.Errorf("msg type: %w", err)
	}
	if err := xdr.WriteUint32(buf, RPCMsgAccepted); err != nil {
		return fmt.Errorf("reply state: %w", err)
	}
	// Null verifier: flavor AUTH_NULL, zero-length body.
	if err := xdr.WriteUint32(buf, AuthNull); err != nil {
		return fmt.Errorf("verifier flavor: %w", err)
	}
	if err := xdr.WriteUint32(buf, 0); err != nil {
		return fmt.Errorf("verifier length: %w", err)
	}
	if err := xdr.WriteUint32(buf, acceptStat); err != nil {
		return fmt.Errorf("accept stat: %w", err)
	}
	return nil
}

// frame prepends a 4-byte ONC-RPC record-marking fragment header with the
// last-fragment bit set, since every reply this server sends fits in a
// single fragment.
func frame(payload []byte) ([]byte, error) {
	if len(payload) > 0x7FFFFFFF {
		return nil, fmt.Errorf("frame: payload too large (%d bytes)", len(payload))
	}
	header := uint32(0x80000000) | uint32(len(payload))
	out := make([]byte, 4+len(payload))
	out[0] = byte(header >> 24)
	out[1] = byte(header >> 16)
	out[2] = byte(header >> 8)
	out[3] = byte(header)
	copy(out[4:], payload)
	return out, nil
}

package rpc

import (
	"encoding/binary"
	"io"

	"github.com/netkitd/netkitd/internal/bufpool"
)

// MaxFragmentSize bounds a single RPC record-marking fragment. NFSv4
// COMPOUND requests are small; anything larger is almost certainly a
// corrupt or hostile length prefix.
const MaxFragmentSize = 1 << 20 // 1 MiB

// FragmentHeader is the parsed 4-byte ONC-RPC record-marking header:
// bit 31 is the last-fragment flag, bits 0-30 are the fragment length.
type FragmentHeader struct {
	IsLast bool
	Length uint32
}

// ReadFragmentHeader reads and decodes a single 4-byte fragment header.
func ReadFragmentHeader(r io.Reader) (*FragmentHeader, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	word := binary.BigEndian.Uint32(buf[:])
	return &FragmentHeader{
		IsLast: word&0x80000000 != 0,
		Length: word & 0x7FFFFFFF,
	}, nil
}

// ReadMessage reads a single, possibly multi-fragment RPC message from r.
// Fragments are concatenated into a pooled buffer sized to the total
// message length; the caller must return it via bufpool.Put once done.
func ReadMessage(r io.Reader) ([]byte, error) {
	var message []byte
	for {
		header, err := ReadFragmentHeader(r)
		if err != nil {
			return nil, err
		}
		if header.Length > MaxFragmentSize {
			return nil, io.ErrShortBuffer
		}

		fragment := bufpool.GetUint32(header.Length)
		if _, err := io.ReadFull(r, fragment); err != nil {
			bufpool.Put(fragment)
			return nil, err
		}

		if message == nil && header.IsLast {
			// Common case: single-fragment message, no copy needed.
			message = fragment
		} else {
			message = append(message, fragment...)
			bufpool.Put(fragment)
		}

		if header.IsLast {
			return message, nil
		}
	}
}

package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// maxOpaqueLength bounds the declared length of any single opaque or
// string value decoded from the wire.
const maxOpaqueLength = 1024 * 1024

// DecodeUint32 reads a 32-bit unsigned integer in XDR big-endian format.
func DecodeUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// DecodeUint64 reads a 64-bit unsigned integer in XDR big-endian format.
func DecodeUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// DecodeInt32 reads a 32-bit signed integer in XDR big-endian format.
func DecodeInt32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// DecodeBool reads a boolean encoded as a 4-byte XDR value.
func DecodeBool(r io.Reader) (bool, error) {
	v, err := DecodeUint32(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// DecodeOpaque reads a variable-length opaque: a uint32 length prefix,
// the raw bytes, and the padding needed to reach a 4-byte boundary.
//
// The declared length is rejected if it exceeds maxOpaqueLength, and
// additionally, when r is a *bytes.Reader, if it exceeds the number of
// bytes actually remaining in the buffer - this catches a corrupt or
// hostile length prefix before it forces a large allocation.
func DecodeOpaque(r io.Reader) ([]byte, error) {
	length, err := DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode opaque length: %w", err)
	}
	if length > maxOpaqueLength {
		return nil, fmt.Errorf("opaque length %d exceeds maximum %d", length, maxOpaqueLength)
	}
	if br, ok := r.(*bytes.Reader); ok {
		if int64(length) > int64(br.Len()) {
			return nil, fmt.Errorf("opaque length %d exceeds remaining %d bytes", length, br.Len())
		}
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read opaque data: %w", err)
	}

	padding := (4 - (length % 4)) % 4
	if padding > 0 {
		var skip [3]byte
		if _, err := io.ReadFull(r, skip[:padding]); err != nil {
			return nil, fmt.Errorf("read opaque padding: %w", err)
		}
	}
	return data, nil
}

// DecodeString reads a variable-length string using the same framing as
// DecodeOpaque.
func DecodeString(r io.Reader) (string, error) {
	data, err := DecodeOpaque(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

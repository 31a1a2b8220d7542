// Package xdr implements the subset of RFC 4506 canonical XDR encoding
// needed for the NFSv4 COMPOUND payload: fixed and variable-length
// integers, opaques, strings and booleans, all big-endian and padded to
// 4-byte boundaries.
package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WriteUint32 writes a 32-bit unsigned integer in XDR big-endian format.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteUint64 writes a 64-bit unsigned integer in XDR big-endian format.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteInt32 writes a 32-bit signed integer in XDR big-endian format.
func WriteInt32(buf *bytes.Buffer, v int32) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteInt64 writes a 64-bit signed integer in XDR big-endian format.
func WriteInt64(buf *bytes.Buffer, v int64) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteBool writes a boolean as a 4-byte XDR value (0 or 1).
func WriteBool(buf *bytes.Buffer, v bool) error {
	if v {
		return WriteUint32(buf, 1)
	}
	return WriteUint32(buf, 0)
}

// WriteXDRPadding writes the zero-byte padding needed to round dataLen
// up to the next multiple of 4.
func WriteXDRPadding(buf *bytes.Buffer, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	if padding == 0 {
		return nil
	}
	var zeros [3]byte
	_, err := buf.Write(zeros[:padding])
	return err
}

// WriteXDROpaque writes a variable-length opaque: a uint32 length prefix,
// the raw bytes, and zero padding to the next 4-byte boundary.
func WriteXDROpaque(buf *bytes.Buffer, data []byte) error {
	if err := WriteUint32(buf, uint32(len(data))); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}
	return WriteXDRPadding(buf, uint32(len(data)))
}

// WriteXDRString writes a variable-length string using the same framing
// as WriteXDROpaque.
func WriteXDRString(buf *bytes.Buffer, s string) error {
	return WriteXDROpaque(buf, []byte(s))
}

package rpc

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUnixAuth() *UnixAuth {
	return &UnixAuth{
		Stamp:       uint32(time.Now().Unix()),
		MachineName: "client.example.com",
		UID:         1000,
		GID:         1000,
		GIDs:        []uint32{4, 24, 27, 30},
	}
}

func encodeUnixAuth(auth *UnixAuth) []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.BigEndian, auth.Stamp)

	nameLen := uint32(len(auth.MachineName))
	_ = binary.Write(buf, binary.BigEndian, nameLen)
	buf.WriteString(auth.MachineName)
	padding := (4 - (nameLen % 4)) % 4
	for i := uint32(0); i < padding; i++ {
		buf.WriteByte(0)
	}

	_ = binary.Write(buf, binary.BigEndian, auth.UID)
	_ = binary.Write(buf, binary.BigEndian, auth.GID)

	_ = binary.Write(buf, binary.BigEndian, uint32(len(auth.GIDs)))
	for _, gid := range auth.GIDs {
		_ = binary.Write(buf, binary.BigEndian, gid)
	}

	return buf.Bytes()
}

func TestParseUnixAuth(t *testing.T) {
	t.Run("parses valid credentials", func(t *testing.T) {
		original := validUnixAuth()
		parsed, err := ParseUnixAuth(encodeUnixAuth(original))
		require.NoError(t, err)
		assert.Equal(t, original.Stamp, parsed.Stamp)
		assert.Equal(t, original.MachineName, parsed.MachineName)
		assert.Equal(t, original.UID, parsed.UID)
		assert.Equal(t, original.GID, parsed.GID)
		assert.Equal(t, original.GIDs, parsed.GIDs)
	})

	t.Run("parses root credentials with no groups", func(t *testing.T) {
		auth := &UnixAuth{Stamp: 1, MachineName: "host", UID: 0, GID: 0, GIDs: []uint32{}}
		parsed, err := ParseUnixAuth(encodeUnixAuth(auth))
		require.NoError(t, err)
		assert.Equal(t, uint32(0), parsed.UID)
		assert.Equal(t, uint32(0), parsed.GID)
		assert.Empty(t, parsed.GIDs)
	})

	t.Run("parses maximum supplementary groups", func(t *testing.T) {
		gids := make([]uint32, maxGIDs)
		for i := range gids {
			gids[i] = uint32(i + 100)
		}
		auth := &UnixAuth{Stamp: 1, MachineName: "host", UID: 1, GID: 1, GIDs: gids}
		parsed, err := ParseUnixAuth(encodeUnixAuth(auth))
		require.NoError(t, err)
		assert.Equal(t, gids, parsed.GIDs)
	})

	t.Run("rejects too many groups", func(t *testing.T) {
		auth := &UnixAuth{Stamp: 1, MachineName: "host", UID: 1, GID: 1, GIDs: make([]uint32, maxGIDs+1)}
		_, err := ParseUnixAuth(encodeUnixAuth(auth))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many gids")
	})

	t.Run("rejects oversized machine name", func(t *testing.T) {
		buf := new(bytes.Buffer)
		_ = binary.Write(buf, binary.BigEndian, uint32(1))
		_ = binary.Write(buf, binary.BigEndian, uint32(maxMachineNameLength+1))
		_, err := ParseUnixAuth(buf.Bytes())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "machine name too long")
	})

	t.Run("rejects empty body", func(t *testing.T) {
		_, err := ParseUnixAuth(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("handles empty machine name", func(t *testing.T) {
		auth := &UnixAuth{Stamp: 1, MachineName: "", UID: 1, GID: 1, GIDs: []uint32{}}
		parsed, err := ParseUnixAuth(encodeUnixAuth(auth))
		require.NoError(t, err)
		assert.Equal(t, "", parsed.MachineName)
	})
}

func TestUnixAuthString(t *testing.T) {
	auth := &UnixAuth{Stamp: 1, MachineName: "client.example.com", UID: 1000, GID: 1000, GIDs: []uint32{4, 24}}
	str := auth.String()
	assert.Contains(t, str, "client.example.com")
	assert.Contains(t, str, "1000")
	assert.Contains(t, str, "[4 24]")
}

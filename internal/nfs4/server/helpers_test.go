package server

import (
	"bytes"
	"testing"

	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/rpc"
	"github.com/netkitd/netkitd/internal/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCompoundHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, xdr.WriteXDRString(buf, "mytag"))
	require.NoError(t, xdr.WriteUint32(buf, 0))

	tag, minorVersion, err := readCompoundHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "mytag", tag)
	assert.Equal(t, uint32(0), minorVersion)
}

func TestReadCompoundHeader_Truncated(t *testing.T) {
	_, _, err := readCompoundHeader(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestDecodeCredential_AuthUnix(t *testing.T) {
	body := new(bytes.Buffer)
	_ = xdr.WriteUint32(body, 1)             // stamp
	_ = xdr.WriteXDRString(body, "host")     // machine name
	_ = xdr.WriteUint32(body, 1000)          // uid
	_ = xdr.WriteUint32(body, 1000)          // gid
	_ = xdr.WriteUint32(body, 0)             // gid count

	call := &rpc.RPCCallMessage{
		Credential: rpc.OpaqueAuth{Flavor: rpc.AuthUnix, Body: body.Bytes()},
	}

	cred := decodeCredential(call)
	assert.Equal(t, uint32(1000), cred.UID)
	assert.Equal(t, uint32(1000), cred.GID)
}

func TestDecodeCredential_AuthNullIsZeroValue(t *testing.T) {
	call := &rpc.RPCCallMessage{Credential: rpc.OpaqueAuth{Flavor: rpc.AuthNull}}
	cred := decodeCredential(call)
	assert.Equal(t, types.Credential{}, cred)
}

func TestDecodeCredential_MalformedAuthUnixIsZeroValue(t *testing.T) {
	call := &rpc.RPCCallMessage{Credential: rpc.OpaqueAuth{Flavor: rpc.AuthUnix, Body: []byte{1}}}
	cred := decodeCredential(call)
	assert.Equal(t, types.Credential{}, cred)
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "NFS4_OK", statusName(types.NFS4_OK))
	assert.Equal(t, "NFS4ERR_STALE", statusName(types.NFS4ERR_STALE))
	assert.Equal(t, "NFS4ERR_54321", statusName(types.Status(54321)))
}

func TestOpName(t *testing.T) {
	assert.Equal(t, "GETATTR", opName(types.OP_GETATTR))
	assert.Equal(t, "OP_999", opName(types.OpCode(999)))
}

// Package types holds the shared NFSv4 wire constants and the cursor
// types threaded through a COMPOUND request's operation list.
package types

// Status is an NFSv4 status code (nfsstat4).
type Status uint32

// Status codes this server's wire protocol emits.
const (
	NFS4_OK             Status = 0
	NFS4ERR_ERROR       Status = 1
	NFS4ERR_BADHANDLE   Status = 10001
	NFS4ERR_BADTYPE     Status = 10002
	NFS4ERR_NOENT       Status = 10003
	NFS4ERR_IO          Status = 10004
	NFS4ERR_NOSPACE     Status = 10005
	NFS4ERR_BADNAME     Status = 10006
	NFS4ERR_ROFS        Status = 10007
	NFS4ERR_STALE       Status = 10008
	NFS4ERR_BAD_STATEID Status = 10009
	NFS4ERR_BADSEQID    Status = 10010
)

// OpCode is an NFSv4 operation number (nfs_opnum4).
type OpCode uint32

// Operation numbers for the subset of NFSv4.0 this server implements
// (RFC 7530 section 17).
const (
	OP_ACCESS       OpCode = 3
	OP_CLOSE        OpCode = 4
	OP_COMMIT       OpCode = 5
	OP_CREATE       OpCode = 6
	OP_GETATTR      OpCode = 9
	OP_GETFH        OpCode = 10
	OP_LOOKUP       OpCode = 15
	OP_LOOKUPP      OpCode = 16
	OP_OPEN         OpCode = 18
	OP_OPEN_CONFIRM OpCode = 20
	OP_READ         OpCode = 25
	OP_WRITE        OpCode = 38
	OP_ILLEGAL      OpCode = 10044
)

// ACCESS bit flags (RFC 7530 section 13.2).
const (
	ACCESS4_READ    uint32 = 0x00000001
	ACCESS4_LOOKUP  uint32 = 0x00000002
	ACCESS4_MODIFY  uint32 = 0x00000004
	ACCESS4_EXTEND  uint32 = 0x00000008
	ACCESS4_DELETE  uint32 = 0x00000010
	ACCESS4_EXECUTE uint32 = 0x00000020
)

// File types (RFC 7530 section 4.2).
const (
	NF4REG uint32 = 1
	NF4DIR uint32 = 2
)

package rpc

import (
	"bytes"
	"fmt"

	"github.com/netkitd/netkitd/internal/xdr"
)

const (
	maxMachineNameLength = 255
	maxGIDs              = 16
)

// ParseUnixAuth decodes an AUTH_UNIX credential body: a timestamp, a
// machine name, a UID, a GID and a list of supplementary GIDs.
func ParseUnixAuth(body []byte) (*UnixAuth, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("parse unix auth: empty credential body")
	}

	r := bytes.NewReader(body)

	stamp, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("parse unix auth: read stamp: %w", err)
	}

	nameLen, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("parse unix auth: read machine name length: %w", err)
	}
	if nameLen > maxMachineNameLength {
		return nil, fmt.Errorf("parse unix auth: machine name too long (%d bytes)", nameLen)
	}
	nameBuf := make([]byte, nameLen)
	if _, err := r.Read(nameBuf); err != nil && nameLen > 0 {
		return nil, fmt.Errorf("parse unix auth: read machine name: %w", err)
	}
	padding := (4 - (nameLen % 4)) % 4
	if padding > 0 {
		skip := make([]byte, padding)
		if _, err := r.Read(skip); err != nil {
			return nil, fmt.Errorf("parse unix auth: read machine name padding: %w", err)
		}
	}

	uid, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("parse unix auth: read uid: %w", err)
	}
	gid, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("parse unix auth: read gid: %w", err)
	}

	gidCount, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("parse unix auth: read gid count: %w", err)
	}
	if gidCount > maxGIDs {
		return nil, fmt.Errorf("parse unix auth: too many gids (%d)", gidCount)
	}
	gids := make([]uint32, gidCount)
	for i := range gids {
		gids[i], err = xdr.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("parse unix auth: read gid[%d]: %w", i, err)
		}
	}

	return &UnixAuth{
		Stamp:       stamp,
		MachineName: string(nameBuf),
		UID:         uid,
		GID:         gid,
		GIDs:        gids,
	}, nil
}

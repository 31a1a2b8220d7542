//go:build linux

package ops

import (
	"os"
	"syscall"
)

// posixAttrs extracts the POSIX metadata GETATTR and ACCESS need from a
// stat result: permission bits, owning uid/gid, block-based space usage,
// and access/modify timestamps.
func posixAttrs(info os.FileInfo) fileStatAttrs {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileStatAttrs{Size: uint64(info.Size())}
	}
	return fileStatAttrs{
		Mode:      uint32(stat.Mode) & 0o7777,
		UID:       stat.Uid,
		GID:       stat.Gid,
		Size:      uint64(info.Size()),
		SpaceUsed: uint64(stat.Blocks) * 512,
		ATimeSec:  uint64(stat.Atim.Sec),
		ATimeNsec: uint32(stat.Atim.Nsec),
		MTimeSec:  uint64(stat.Mtim.Sec),
		MTimeNsec: uint32(stat.Mtim.Nsec),
	}
}

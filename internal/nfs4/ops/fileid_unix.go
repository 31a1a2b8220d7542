//go:build !windows

package ops

import (
	"os"
	"syscall"
)

// fileID derives a stable fileid4 from the underlying inode number.
func fileID(info os.FileInfo) uint64 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(stat.Ino)
	}
	return 0
}

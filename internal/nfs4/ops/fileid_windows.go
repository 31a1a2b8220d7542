//go:build windows

package ops

import "os"

// fileID has no portable inode equivalent on Windows; this server's
// export root is only ever exercised on POSIX platforms in practice, so
// a constant placeholder is sufficient here.
func fileID(info os.FileInfo) uint64 {
	return 0
}

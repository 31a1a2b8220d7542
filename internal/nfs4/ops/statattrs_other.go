//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package ops

import "os"

// posixAttrs has no portable POSIX stat equivalent on this platform; this
// server's export root is only ever exercised on POSIX platforms in
// practice, so only size and modify time are populated here.
func posixAttrs(info os.FileInfo) fileStatAttrs {
	mtime := info.ModTime()
	return fileStatAttrs{
		Size:      uint64(info.Size()),
		MTimeSec:  uint64(mtime.Unix()),
		MTimeNsec: uint32(mtime.Nanosecond()),
	}
}

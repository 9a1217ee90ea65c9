//go:build linux

package trees

import (
	"os"
	"syscall"
	"time"
)

// creationTime reports the inode change time; Linux stat has no birth time.
func creationTime(fileinfo os.FileInfo) time.Time {
	if stat, ok := fileinfo.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(stat.Ctim.Sec), int64(stat.Ctim.Nsec))
	}
	return fileinfo.ModTime()
}

//go:build darwin

package trees

import (
	"os"
	"syscall"
	"time"
)

func creationTime(fileinfo os.FileInfo) time.Time {
	if stat, ok := fileinfo.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	}
	return fileinfo.ModTime()
}

//go:build unix

package trees

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
)

// getFileOwner retrieves the owner name for a file on Unix-like systems
func getFileOwner(fileinfo os.FileInfo) string {
	if stat, ok := fileinfo.Sys().(*syscall.Stat_t); ok {
		if u, err := user.LookupId(strconv.Itoa(int(stat.Uid))); err == nil {
			return u.Username
		}
		// If lookup fails, return the UID as a string
		return strconv.Itoa(int(stat.Uid))
	}

	return "unknown"
}

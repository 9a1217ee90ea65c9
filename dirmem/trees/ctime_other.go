//go:build !linux && !darwin

package trees

import (
	"os"
	"time"
)

func creationTime(fileinfo os.FileInfo) time.Time {
	return fileinfo.ModTime()
}

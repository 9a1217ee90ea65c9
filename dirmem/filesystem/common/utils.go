package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathUtils provides path manipulation utilities used across packages
type PathUtils struct{}

// NewPathUtils creates a new PathUtils instance
func NewPathUtils() *PathUtils {
	return &PathUtils{}
}

// NormalizePath returns the cleaned absolute form of path.
func (pu *PathUtils) NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

// ValidatePath validates that a path is usable as an operation argument
func (pu *PathUtils) ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidArguments)
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null character", ErrInvalidArguments)
	}
	if len(path) > 4096 {
		return fmt.Errorf("%w: path too long (max 4096 characters)", ErrInvalidArguments)
	}
	return nil
}

// IsHidden reports whether an entry name is excluded from traversal.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// SplitRelativePath splits a slash-separated relative path into its
// non-empty segments.
func SplitRelativePath(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

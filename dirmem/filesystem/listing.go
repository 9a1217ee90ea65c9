package filesystem

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
)

// listing is the filtered view of one directory.
type listing struct {
	entries []os.DirEntry
	err     error
}

// listDirectory reads dir and drops hidden and ignored entries. The result
// is sorted by name. On failure the entries read before the error are kept.
func listDirectory(dir, rootPath string, rules IgnoreChecker) listing {
	entries, err := os.ReadDir(dir)

	kept := make([]os.DirEntry, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if common.IsHidden(name) {
			continue
		}
		if rel, relErr := filepath.Rel(rootPath, filepath.Join(dir, name)); relErr == nil {
			if ignoredEntry(rules, filepath.ToSlash(rel), entry.IsDir()) {
				continue
			}
		}
		kept = append(kept, entry)
	}

	return listing{entries: kept, err: err}
}

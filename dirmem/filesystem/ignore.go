package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreChecker interface for file ignore patterns
type IgnoreChecker interface {
	MatchesPath(path string) bool
}

type nullIgnoreChecker struct{}

func (nullIgnoreChecker) MatchesPath(string) bool { return false }

// LoadIgnoreRules compiles <root>/<fileName> when it exists. A missing file
// yields a checker that matches nothing.
func LoadIgnoreRules(root, fileName string) (IgnoreChecker, error) {
	if fileName == "" {
		return nullIgnoreChecker{}, nil
	}

	ignorePath := filepath.Join(root, fileName)
	if _, err := os.Stat(ignorePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nullIgnoreChecker{}, nil
		}
		return nil, fmt.Errorf("error checking for %s file: %w", fileName, err)
	}

	ignored, err := ignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", fileName, err)
	}
	return ignored, nil
}

// ignoredEntry reports whether the entry at relPath (slash separated,
// relative to the traversal root) is excluded by rules.
func ignoredEntry(rules IgnoreChecker, relPath string, isDir bool) bool {
	if rules.MatchesPath(relPath) {
		return true
	}
	// Directory-only patterns ("build/") match the slash-terminated form.
	return isDir && rules.MatchesPath(relPath+"/")
}

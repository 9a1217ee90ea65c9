package trees

import (
	"fmt"
	"strings"

	"github.com/armon/go-radix"
)

// PathIndex is a patricia tree over the directories of a memory tree, keyed
// by slash-joined name path. Walks return keys in lexicographic order.
type PathIndex struct {
	tree *radix.Tree
}

// NewPathIndex creates an empty index
func NewPathIndex() *PathIndex {
	return &PathIndex{tree: radix.New()}
}

// BuildPathIndex indexes every directory under root.
func BuildPathIndex(root Node) *PathIndex {
	idx := NewPathIndex()
	for _, entry := range FlattenDirectories(root) {
		// A duplicate name path keeps the first directory, matching Locate's
		// refusal to pick between same-name siblings.
		key := normalizeKey(entry.Path)
		if _, exists := idx.tree.Get(key); exists {
			continue
		}
		idx.tree.Insert(key, entry)
	}
	return idx
}

// Insert adds or replaces an entry.
func (idx *PathIndex) Insert(entry DirectoryEntry) error {
	if entry.Path == "" {
		return fmt.Errorf("invalid input: entry path cannot be empty")
	}
	idx.tree.Insert(normalizeKey(entry.Path), entry)
	return nil
}

// Lookup finds a directory by its exact name path.
func (idx *PathIndex) Lookup(path string) (DirectoryEntry, bool) {
	value, found := idx.tree.Get(normalizeKey(path))
	if !found {
		return DirectoryEntry{}, false
	}
	return value.(DirectoryEntry), true
}

// Subtree returns prefix itself and every directory below it, sorted by
// path. Matching respects segment boundaries: "a/b" does not match "a/bc".
// An empty prefix returns everything.
func (idx *PathIndex) Subtree(prefix string) []DirectoryEntry {
	key := normalizeKey(prefix)

	var results []DirectoryEntry
	idx.tree.WalkPrefix(key, func(k string, value interface{}) bool {
		if key == "" || k == key || strings.HasPrefix(k, key+"/") || strings.HasSuffix(key, "/") {
			results = append(results, value.(DirectoryEntry))
		}
		return false // Continue walking
	})
	return results
}

// Size returns the number of indexed directories
func (idx *PathIndex) Size() int {
	return idx.tree.Len()
}

// normalizeKey trims a trailing slash unless the key is the filesystem root.
func normalizeKey(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

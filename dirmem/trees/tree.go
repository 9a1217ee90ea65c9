package trees

import (
	"fmt"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
)

// DirectoryEntry is one directory of a flattened tree.
type DirectoryEntry struct {
	Path        string // slash-joined names from the root, root name first
	Description string
	FullPath    string
	Node        *DirectoryNode
}

// WalkFunc is called for every node with its slash-joined name path.
// Returning false skips the node's children.
type WalkFunc func(path string, node Node) bool

// Walk visits root and its descendants depth-first, pre-order, children in
// stored order. It uses an explicit stack.
func Walk(root Node, fn WalkFunc) {
	if root == nil {
		return
	}

	type frame struct {
		path string
		node Node
	}
	stack := []frame{{path: root.GetName(), node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(top.path, top.node) {
			continue
		}

		dir, ok := top.node.(*DirectoryNode)
		if !ok {
			continue
		}
		for i := len(dir.Children) - 1; i >= 0; i-- {
			child := dir.Children[i]
			stack = append(stack, frame{path: JoinNamePath(top.path, child.GetName()), node: child})
		}
	}
}

// FlattenDirectories lists every directory of the tree in depth-first
// pre-order, root included.
func FlattenDirectories(root Node) []DirectoryEntry {
	var entries []DirectoryEntry
	Walk(root, func(path string, node Node) bool {
		dir, ok := node.(*DirectoryNode)
		if !ok {
			return false
		}
		entries = append(entries, DirectoryEntry{
			Path:        path,
			Description: dir.Description,
			FullPath:    dir.FullPath,
			Node:        dir,
		})
		return true
	})
	return entries
}

// Locate resolves a slash-separated path relative to root. Empty segments
// are ignored, so "" and "/" both name the root. Every step must land on a
// directory holding exactly one child with the next name.
func Locate(root Node, relativePath string) (Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty tree", common.ErrNotFound)
	}

	current := root
	for _, segment := range common.SplitRelativePath(relativePath) {
		dir, ok := current.(*DirectoryNode)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not below a directory", common.ErrNotFound, relativePath)
		}
		next, ok := dir.Child(segment)
		if !ok {
			return nil, fmt.Errorf("%w: no entry %q in %q", common.ErrNotFound, segment, relativePath)
		}
		current = next
	}

	return current, nil
}

// LocateDirectory is Locate restricted to directories.
func LocateDirectory(root Node, relativePath string) (*DirectoryNode, error) {
	node, err := Locate(root, relativePath)
	if err != nil {
		return nil, err
	}
	dir, ok := node.(*DirectoryNode)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a directory", common.ErrNotFound, relativePath)
	}
	return dir, nil
}

// JoinNamePath appends name to a slash-joined name path.
func JoinNamePath(parent, name string) string {
	if parent == "" {
		return name
	}
	if parent[len(parent)-1] == '/' {
		return parent + name
	}
	return parent + "/" + name
}

package trees

import (
	"bytes"
	"encoding/json"
	"path/filepath"
)

type NodeType int

const (
	Directory NodeType = iota
	File
)

// Convert NodeType to String
func (n NodeType) String() string {
	switch n {
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return "unknown"
	}
}

// Map string to NodeType
func StringToNodeType(s string) NodeType {
	switch s {
	case "directory":
		return Directory
	case "file":
		return File
	default:
		return -1
	}
}

// Node is one entry of a memory tree. It is implemented by *DirectoryNode
// and *FileNode only; switch on the concrete type to reach variant fields.
type Node interface {
	GetName() string
	GetPath() string
	GetMetadata() Metadata
	SetMetadata(Metadata)
	Kind() NodeType
	IsDirectory() bool
}

// DirectoryNode is a directory with a user supplied description and its
// entries ordered by name.
type DirectoryNode struct {
	Name        string
	FullPath    string
	Description string
	Children    []Node
	Metadata    Metadata
	Error       string
}

// FileNode is any non-directory entry, symbolic links included.
type FileNode struct {
	Name     string
	FullPath string
	Metadata Metadata
}

// NewDirectoryNode creates an empty directory node for fullPath.
func NewDirectoryNode(fullPath string) *DirectoryNode {
	return &DirectoryNode{
		Name:     filepath.Base(fullPath),
		FullPath: fullPath,
		Children: []Node{},
	}
}

// NewFileNode creates a file node for fullPath.
func NewFileNode(fullPath string) *FileNode {
	return &FileNode{
		Name:     filepath.Base(fullPath),
		FullPath: fullPath,
	}
}

func (d *DirectoryNode) GetName() string { return d.Name }
func (d *DirectoryNode) GetPath() string { return d.FullPath }
func (d *DirectoryNode) GetMetadata() Metadata { return d.Metadata }
func (d *DirectoryNode) SetMetadata(m Metadata) { d.Metadata = m }
func (d *DirectoryNode) Kind() NodeType { return Directory }
func (d *DirectoryNode) IsDirectory() bool { return true }
func (f *FileNode) GetName() string { return f.Name }
func (f *FileNode) GetPath() string { return f.FullPath }
func (f *FileNode) GetMetadata() Metadata { return f.Metadata }
func (f *FileNode) SetMetadata(m Metadata) { f.Metadata = m }
func (f *FileNode) Kind() NodeType { return File }
func (f *FileNode) IsDirectory() bool { return false }

// AddChild appends a child node.
func (d *DirectoryNode) AddChild(child Node) {
	d.Children = append(d.Children, child)
}

// Child returns the only child called name. It reports false when there is
// no such child or the name is ambiguous.
func (d *DirectoryNode) Child(name string) (Node, bool) {
	var found Node
	for _, child := range d.Children {
		if child.GetName() != name {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = child
	}
	return found, found != nil
}

type directoryJSON struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	FullPath    string   `json:"full_path"`
	Metadata    Metadata `json:"metadata,omitempty"`
	Error       string   `json:"error,omitempty"`
	Children    []Node   `json:"children"`
}

type fileJSON struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	FullPath string   `json:"full_path"`
	Metadata Metadata `json:"metadata,omitempty"`
}

func (d *DirectoryNode) MarshalJSON() ([]byte, error) {
	children := d.Children
	if children == nil {
		children = []Node{}
	}
	return marshalVerbatim(directoryJSON{
		Name:        d.Name,
		Type:        Directory.String(),
		Description: d.Description,
		FullPath:    d.FullPath,
		Metadata:    d.Metadata,
		Error:       d.Error,
		Children:    children,
	})
}

func (f *FileNode) MarshalJSON() ([]byte, error) {
	return marshalVerbatim(fileJSON{
		Name:     f.Name,
		Type:     File.String(),
		FullPath: f.FullPath,
		Metadata: f.Metadata,
	})
}

// marshalVerbatim is json.Marshal without HTML escaping, so names holding
// '<', '>' or '&' are written as is.
func marshalVerbatim(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

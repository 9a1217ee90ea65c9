package trees

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
)

// DecodeNode parses a serialized tree. Numbers inside metadata are kept as
// json.Number so a load/save cycle reproduces them exactly.
func DecodeNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", common.ErrInvalidJSON)
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: top level value is not an object", common.ErrInvalidSchema)
	}
	return NodeFromValue(value)
}

// NodeFromValue converts a generic decoded JSON value into a tree.
// The conversion is iterative so deep documents do not grow the stack.
func NodeFromValue(value any) (Node, error) {
	type pending struct {
		value  any
		parent *DirectoryNode
		index  int
		where  string
	}

	var root Node
	stack := []pending{{value: value, index: -1, where: "$"}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, children, err := nodeFromObject(item.value, item.where)
		if err != nil {
			return nil, err
		}

		if item.parent == nil {
			root = node
		} else {
			item.parent.Children[item.index] = node
		}

		dir, ok := node.(*DirectoryNode)
		if !ok {
			continue
		}
		dir.Children = make([]Node, len(children))
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pending{
				value:  children[i],
				parent: dir,
				index:  i,
				where:  fmt.Sprintf("%s.children[%d]", item.where, i),
			})
		}
	}

	return root, nil
}

func nodeFromObject(value any, where string) (Node, []any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is not an object", common.ErrInvalidSchema, where)
	}

	name, err := stringField(obj, "name", where, true)
	if err != nil {
		return nil, nil, err
	}
	kind, err := stringField(obj, "type", where, true)
	if err != nil {
		return nil, nil, err
	}
	fullPath, err := stringField(obj, "full_path", where, false)
	if err != nil {
		return nil, nil, err
	}

	var metadata Metadata
	if raw, present := obj["metadata"]; present && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s.metadata is not an object", common.ErrInvalidSchema, where)
		}
		metadata = Metadata(m)
	}

	switch StringToNodeType(kind) {
	case File:
		return &FileNode{Name: name, FullPath: fullPath, Metadata: metadata}, nil, nil
	case Directory:
		description, err := stringField(obj, "description", where, false)
		if err != nil {
			return nil, nil, err
		}
		errText, err := stringField(obj, "error", where, false)
		if err != nil {
			return nil, nil, err
		}
		var children []any
		if raw, present := obj["children"]; present && raw != nil {
			list, ok := raw.([]any)
			if !ok {
				return nil, nil, fmt.Errorf("%w: %s.children is not an array", common.ErrInvalidSchema, where)
			}
			children = list
		}
		dir := &DirectoryNode{
			Name:        name,
			FullPath:    fullPath,
			Description: description,
			Metadata:    metadata,
			Error:       errText,
		}
		return dir, children, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s has unknown type %q", common.ErrInvalidSchema, where, kind)
	}
}

func stringField(obj map[string]any, key, where string, required bool) (string, error) {
	raw, present := obj[key]
	if !present || raw == nil {
		if required {
			return "", fmt.Errorf("%w: %s is missing %q", common.ErrInvalidSchema, where, key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s is not a string", common.ErrInvalidSchema, where, key)
	}
	return s, nil
}

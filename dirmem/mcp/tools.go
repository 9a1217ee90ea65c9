package mcp

import (
	"context"
	"encoding/json"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
	"github.com/ZanzyTHEbar/dirmem/dirmem/memory"
)

// DefaultTools returns every memory tool bound to svc.
func DefaultTools(svc *memory.Service) []Tool {
	return []Tool{
		&ValidateDocumentTool{svc: svc},
		&SnapshotDirectoryTool{svc: svc},
		&RefreshDocumentTool{svc: svc},
		&SetDescriptionTool{svc: svc},
		&MergeMetadataTool{svc: svc},
		&FindRelevantDirectoryTool{svc: svc},
		&ReadFileTool{svc: svc},
		&ReadFilesTool{svc: svc},
		&ListDirectoriesTool{svc: svc},
		&DescribeDirectoriesTool{svc: svc},
		&CombineDescriptionsTool{},
	}
}

var documentProperty = stringProperty("Path of the memory document. Defaults to the configured document.")

// ValidateDocumentTool checks that a memory document holds a well-formed tree.
type ValidateDocumentTool struct {
	svc *memory.Service
}

func (t *ValidateDocumentTool) Name() string { return "validate_document" }

func (t *ValidateDocumentTool) Description() string {
	return "Check that the memory document exists and holds a valid directory tree. Returns the tree when valid."
}

func (t *ValidateDocumentTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{"document": documentProperty}, nil)
}

func (t *ValidateDocumentTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Document string `json:"document"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}

	root, err := t.svc.Validate(ctx, input.Document)
	if err != nil {
		return map[string]any{
			"valid":   false,
			"message": err.Error(),
			"code":    common.Code(err),
		}, nil
	}
	return map[string]any{"valid": true, "data": root}, nil
}

// SnapshotDirectoryTool walks a directory and stores it as the memory document.
type SnapshotDirectoryTool struct {
	svc *memory.Service
}

func (t *SnapshotDirectoryTool) Name() string { return "snapshot_directory" }

func (t *SnapshotDirectoryTool) Description() string {
	return "Walk a directory tree (hidden entries excluded, symlinks not followed) and save it as the memory document."
}

func (t *SnapshotDirectoryTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"path":     stringProperty("Directory to analyze"),
			"document": documentProperty,
			"overwrite": map[string]interface{}{
				"type":        "boolean",
				"description": "Replace an existing document, keeping the old one as a backup",
			},
		},
		[]string{"path"},
	)
}

func (t *SnapshotDirectoryTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Path      string `json:"path"`
		Document  string `json:"document"`
		Overwrite bool   `json:"overwrite"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	if input.Path == "" {
		return nil, missingArgument("path")
	}
	return t.svc.Snapshot(ctx, input.Path, input.Document, input.Overwrite)
}

// RefreshDocumentTool reconciles the memory document with the filesystem.
type RefreshDocumentTool struct {
	svc *memory.Service
}

func (t *RefreshDocumentTool) Name() string { return "refresh_document" }

func (t *RefreshDocumentTool) Description() string {
	return "Update the memory document with added and removed entries, keeping existing descriptions and metadata."
}

func (t *RefreshDocumentTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{"document": documentProperty}, nil)
}

func (t *RefreshDocumentTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Document string `json:"document"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	return t.svc.Refresh(ctx, input.Document)
}

// SetDescriptionTool updates a directory description.
type SetDescriptionTool struct {
	svc *memory.Service
}

func (t *SetDescriptionTool) Name() string { return "set_description" }

func (t *SetDescriptionTool) Description() string {
	return "Set the description of a directory, addressed by its path relative to the document root (empty for the root)."
}

func (t *SetDescriptionTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"relative_path": stringProperty("Slash-separated path below the root"),
			"description":   stringProperty("New description"),
			"document":      documentProperty,
		},
		[]string{"relative_path", "description"},
	)
}

func (t *SetDescriptionTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		RelativePath *string `json:"relative_path"`
		Description  *string `json:"description"`
		Document     string  `json:"document"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	if input.RelativePath == nil {
		return nil, missingArgument("relative_path")
	}
	if input.Description == nil {
		return nil, missingArgument("description")
	}
	return t.svc.SetDescription(ctx, input.Document, *input.RelativePath, *input.Description)
}

// MergeMetadataTool merges keys into a node's metadata.
type MergeMetadataTool struct {
	svc *memory.Service
}

func (t *MergeMetadataTool) Name() string { return "merge_metadata" }

func (t *MergeMetadataTool) Description() string {
	return "Merge key/value pairs into the metadata of a file or directory and stamp last_metadata_update."
}

func (t *MergeMetadataTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"relative_path": stringProperty("Slash-separated path below the root"),
			"metadata": map[string]interface{}{
				"type":        "object",
				"description": "Keys to add or replace",
			},
			"document": documentProperty,
		},
		[]string{"relative_path", "metadata"},
	)
}

func (t *MergeMetadataTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		RelativePath *string        `json:"relative_path"`
		Metadata     map[string]any `json:"metadata"`
		Document     string         `json:"document"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	if input.RelativePath == nil {
		return nil, missingArgument("relative_path")
	}
	if input.Metadata == nil {
		return nil, missingArgument("metadata")
	}
	return t.svc.MergeMetadata(ctx, input.Document, *input.RelativePath, input.Metadata)
}

// FindRelevantDirectoryTool answers which directory best matches a question.
type FindRelevantDirectoryTool struct {
	svc *memory.Service
}

func (t *FindRelevantDirectoryTool) Name() string { return "find_relevant_directory" }

func (t *FindRelevantDirectoryTool) Description() string {
	return "Find the directory whose path and description share the most words with a question. The query must start with the configured marker."
}

func (t *FindRelevantDirectoryTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"query":    stringProperty("Question, prefixed with the query marker"),
			"document": documentProperty,
		},
		[]string{"query"},
	)
}

func (t *FindRelevantDirectoryTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Query    string `json:"query"`
		Document string `json:"document"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	match, err := t.svc.FindRelevant(ctx, input.Document, input.Query)
	if err != nil {
		return nil, err
	}
	return map[string]any{"path": match.Path, "full_path": match.FullPath}, nil
}

// ReadFileTool returns the contents of one file.
type ReadFileTool struct {
	svc *memory.Service
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file."
}

func (t *ReadFileTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{"path": stringProperty("Path of the file to read")}, []string{"path"})
}

func (t *ReadFileTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Path string `json:"path"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	return t.svc.ReadFile(ctx, input.Path), nil
}

// ReadFilesTool returns the contents of several files.
type ReadFilesTool struct {
	svc *memory.Service
}

func (t *ReadFilesTool) Name() string { return "read_files" }

func (t *ReadFilesTool) Description() string {
	return "Read several files. Each entry reports its content or its own error."
}

func (t *ReadFilesTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"paths": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Paths of the files to read",
			},
		},
		[]string{"paths"},
	)
}

func (t *ReadFilesTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Paths []string `json:"paths"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	if input.Paths == nil {
		return nil, missingArgument("paths")
	}
	return map[string]any{"files": t.svc.ReadFiles(ctx, input.Paths)}, nil
}

// ListDirectoriesTool lists directories of the memory document.
type ListDirectoriesTool struct {
	svc *memory.Service
}

func (t *ListDirectoriesTool) Name() string { return "list_directories" }

func (t *ListDirectoriesTool) Description() string {
	return "List directories of the memory document sorted by path, optionally restricted to a path prefix and a glob pattern."
}

func (t *ListDirectoriesTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"prefix":   stringProperty("Only directories at or below this path, starting with the root name"),
			"pattern":  stringProperty("Glob over the path; * does not cross /"),
			"document": documentProperty,
		},
		nil,
	)
}

func (t *ListDirectoriesTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Prefix   string `json:"prefix"`
		Pattern  string `json:"pattern"`
		Document string `json:"document"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	dirs, err := t.svc.ListDirectories(ctx, input.Document, input.Prefix, input.Pattern)
	if err != nil {
		return nil, err
	}
	return map[string]any{"directories": dirs}, nil
}

// DescribeDirectoriesTool lists every directory description.
type DescribeDirectoriesTool struct {
	svc *memory.Service
}

func (t *DescribeDirectoriesTool) Name() string { return "describe_directories" }

func (t *DescribeDirectoriesTool) Description() string {
	return "Return the description and full path of every directory in the memory document."
}

func (t *DescribeDirectoriesTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{"document": documentProperty}, nil)
}

func (t *DescribeDirectoriesTool) Execute(ctx context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Document string `json:"document"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	result, err := t.svc.DescribeDirectories(ctx, input.Document)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": result}, nil
}

// CombineDescriptionsTool bundles directory descriptions with a prompt.
type CombineDescriptionsTool struct{}

func (t *CombineDescriptionsTool) Name() string { return "combine_descriptions_with_prompt" }

func (t *CombineDescriptionsTool) Description() string {
	return "Return a list of directory descriptions together with a user prompt."
}

func (t *CombineDescriptionsTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"descriptions": map[string]interface{}{
				"type":        "array",
				"description": "Descriptions as returned by describe_directories",
			},
			"prompt": stringProperty("User prompt"),
		},
		[]string{"descriptions", "prompt"},
	)
}

func (t *CombineDescriptionsTool) Execute(_ context.Context, arguments json.RawMessage) (any, error) {
	var input struct {
		Descriptions []json.RawMessage `json:"descriptions"`
		Prompt       string            `json:"prompt"`
	}
	if err := decodeArguments(arguments, &input); err != nil {
		return nil, err
	}
	return memory.CombineDescriptionsWithPrompt(input.Descriptions, input.Prompt), nil
}

// errorResult is the structured failure returned for a tool error.
func errorResult(err error) map[string]any {
	return map[string]any{
		"error": err.Error(),
		"code":  common.Code(err),
	}
}

// describeTool renders a tool for tools/list.
func describeTool(t Tool) map[string]any {
	return map[string]any{
		"name":        t.Name(),
		"description": t.Description(),
		"inputSchema": t.Schema(),
	}
}


package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/dirmem/dirmem/config"
	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem"
	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
	"github.com/ZanzyTHEbar/dirmem/dirmem/indexing"
	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// Service runs the memory operations. Every call loads the document it
// needs, works on it in memory and saves it again when it changed; nothing
// is cached between calls.
type Service struct {
	cfg         *config.Config
	store       *Store
	snapshotter *filesystem.Snapshotter
	merger      *filesystem.Merger
	pathUtils   *common.PathUtils
	logger      zerolog.Logger
	now         func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock overrides the wall clock used for metadata timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires a Service from configuration.
func NewService(cfg *config.Config, logger zerolog.Logger, opts ...ServiceOption) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Service{
		cfg:       cfg,
		store:     NewStore(cfg.Memory.BackupSuffix, logger),
		pathUtils: common.NewPathUtils(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	walkerOpts := []filesystem.Option{
		filesystem.WithLogger(logger),
		filesystem.WithIgnoreFile(cfg.Snapshot.IgnoreFile),
		filesystem.WithClock(s.now),
	}
	s.snapshotter = filesystem.NewSnapshotter(walkerOpts...)
	s.merger = filesystem.NewMerger(walkerOpts...)
	return s
}

// Store returns the document store used by the service.
func (s *Service) Store() *Store {
	return s.store
}

// DocumentPath resolves the document to operate on. An empty path selects
// the configured default.
func (s *Service) DocumentPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return s.cfg.DocumentPath()
	}
	return s.pathUtils.NormalizePath(path)
}

// Validate loads the document and reports whether it is a well-formed tree.
func (s *Service) Validate(ctx context.Context, docPath string) (trees.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Load(s.DocumentPath(docPath))
}

// Snapshot walks rootPath and saves the result to docPath. A failed save is
// reported on the returned document rather than as an error, so the caller
// still gets the tree.
func (s *Service) Snapshot(ctx context.Context, rootPath, docPath string, overwrite bool) (*Document, error) {
	root, err := s.snapshotter.Snapshot(ctx, rootPath)
	if err != nil {
		return nil, err
	}

	target := s.DocumentPath(docPath)
	doc := &Document{Root: root}
	if err := s.store.Save(root, target, overwrite); err != nil {
		s.logger.Warn().Err(err).Str("document", target).Msg("snapshot not saved")
		doc.SaveError = err.Error()
		return doc, nil
	}
	doc.GeneratedFilePath = target
	return doc, nil
}

// Refresh merges the stored document with the current state of the
// directory it describes and saves the result over the original.
func (s *Service) Refresh(ctx context.Context, docPath string) (trees.Node, error) {
	target := s.DocumentPath(docPath)
	previous, err := s.store.Load(target)
	if err != nil {
		return nil, err
	}

	livePath := filepath.Dir(target)
	if dir, ok := previous.(*trees.DirectoryNode); ok && dir.FullPath != "" {
		livePath = dir.FullPath
	}
	if err := requireDirectory(livePath); err != nil {
		return nil, err
	}

	merged, err := s.merger.Merge(ctx, previous, livePath)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(merged, target, true); err != nil {
		return nil, err
	}
	return merged, nil
}

// SetDescription replaces the description of the directory at relPath.
func (s *Service) SetDescription(ctx context.Context, docPath, relPath, description string) (trees.Node, error) {
	return s.update(ctx, docPath, func(root trees.Node) error {
		dir, err := trees.LocateDirectory(root, relPath)
		if err != nil {
			return err
		}
		dir.Description = description
		return nil
	})
}

// MergeMetadata copies patch into the metadata of the node at relPath and
// stamps last_metadata_update.
func (s *Service) MergeMetadata(ctx context.Context, docPath, relPath string, patch map[string]any) (trees.Node, error) {
	return s.update(ctx, docPath, func(root trees.Node) error {
		node, err := trees.Locate(root, relPath)
		if err != nil {
			return err
		}
		node.SetMetadata(node.GetMetadata().Merge(patch, s.now()))
		return nil
	})
}

// update loads the document, applies mutate and saves it back. Nothing is
// written when mutate fails.
func (s *Service) update(ctx context.Context, docPath string, mutate func(trees.Node) error) (trees.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := s.DocumentPath(docPath)
	root, err := s.store.Load(target)
	if err != nil {
		return nil, err
	}
	if err := mutate(root); err != nil {
		return nil, err
	}
	if err := s.store.Save(root, target, true); err != nil {
		return nil, err
	}
	return root, nil
}

// FindRelevant picks the directory whose path and description share the
// most words with query. The query must start with the configured marker,
// which is stripped before matching.
func (s *Service) FindRelevant(ctx context.Context, docPath, query string) (indexing.Candidate, error) {
	marker := s.cfg.Query.Marker
	if !strings.HasPrefix(query, marker) {
		return indexing.Candidate{}, fmt.Errorf("%w: query must start with %q", common.ErrInvalidArguments, marker)
	}
	question := strings.TrimSpace(strings.TrimPrefix(query, marker))

	if err := ctx.Err(); err != nil {
		return indexing.Candidate{}, err
	}
	root, err := s.store.Load(s.DocumentPath(docPath))
	if err != nil {
		return indexing.Candidate{}, err
	}

	match, err := indexing.BestMatch(indexing.CandidatesFromTree(root), question)
	if err != nil {
		return indexing.Candidate{}, err
	}
	s.logger.Debug().Str("query", question).Str("match", match.Path).Msg("relevant directory found")
	return match, nil
}

// ListDirectories returns the directories under prefix sorted by path,
// optionally filtered by a glob over the path. Directories with a hidden
// name below the root are left out.
func (s *Service) ListDirectories(ctx context.Context, docPath, prefix, pattern string) ([]indexing.Candidate, error) {
	var matcher glob.Glob
	if pattern != "" {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", common.ErrInvalidArguments, pattern, err)
		}
		matcher = g
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := s.store.Load(s.DocumentPath(docPath))
	if err != nil {
		return nil, err
	}

	entries := trees.BuildPathIndex(root).Subtree(prefix)
	result := make([]indexing.Candidate, 0, len(entries))
	for _, entry := range entries {
		if hasHiddenSegment(entry.Path) {
			continue
		}
		if matcher != nil && !matcher.Match(entry.Path) {
			continue
		}
		result = append(result, indexing.Candidate{
			Path:        entry.Path,
			Description: entry.Description,
			FullPath:    entry.FullPath,
		})
	}
	return result, nil
}

// DirectoryDescription pairs a directory's description with its location.
type DirectoryDescription struct {
	Description string `json:"description"`
	FullPath    string `json:"full_path"`
}

// DescribeDirectories lists every directory's description in depth-first
// pre-order.
func (s *Service) DescribeDirectories(ctx context.Context, docPath string) ([]DirectoryDescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := s.store.Load(s.DocumentPath(docPath))
	if err != nil {
		return nil, err
	}

	entries := trees.FlattenDirectories(root)
	result := make([]DirectoryDescription, len(entries))
	for i, entry := range entries {
		result[i] = DirectoryDescription{Description: entry.Description, FullPath: entry.FullPath}
	}
	return result, nil
}

// FileContent is the outcome of reading one file. Error holds a result code
// when the read failed, in which case Content is empty.
type FileContent struct {
	Path    string
	Content string
	Error   string
	Message string
}

// MarshalJSON renders {path, content} on success and {path, error, message}
// on failure.
func (fc FileContent) MarshalJSON() ([]byte, error) {
	if fc.Error != "" {
		return json.Marshal(struct {
			Path    string `json:"path"`
			Error   string `json:"error"`
			Message string `json:"message"`
		}{fc.Path, fc.Error, fc.Message})
	}
	return json.Marshal(struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}{fc.Path, fc.Content})
}

// ReadFile returns the contents of the file at path.
func (s *Service) ReadFile(ctx context.Context, path string) FileContent {
	result := FileContent{Path: path}
	if err := ctx.Err(); err != nil {
		return result.failed(err)
	}
	if err := s.pathUtils.ValidatePath(path); err != nil {
		return result.failed(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return result.failed(classifyReadError(path, err))
	}
	result.Content = string(data)
	return result
}

// ReadFiles reads paths with bounded parallelism. Results keep the order of
// paths and each failure is confined to its own entry.
func (s *Service) ReadFiles(ctx context.Context, paths []string) []FileContent {
	mapper := iter.Mapper[string, FileContent]{MaxGoroutines: s.cfg.Files.MaxConcurrency}
	return mapper.Map(paths, func(path *string) FileContent {
		return s.ReadFile(ctx, *path)
	})
}

func (fc FileContent) failed(err error) FileContent {
	fc.Content = ""
	fc.Error = common.Code(err)
	fc.Message = err.Error()
	return fc
}

// Combination is a prompt bundled with the directory descriptions it refers to.
type Combination struct {
	Descriptions []json.RawMessage `json:"descriptions"`
	Prompt       string            `json:"prompt"`
}

// CombineDescriptionsWithPrompt returns descriptions and prompt together,
// unchanged.
func CombineDescriptionsWithPrompt(descriptions []json.RawMessage, prompt string) Combination {
	if descriptions == nil {
		descriptions = []json.RawMessage{}
	}
	return Combination{Descriptions: descriptions, Prompt: prompt}
}

func requireDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, path)
		}
		return fmt.Errorf("%w: stat %s: %w", common.ErrIO, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", common.ErrNotADirectory, path)
	}
	return nil
}

func hasHiddenSegment(namePath string) bool {
	segments := strings.Split(namePath, "/")
	for _, segment := range segments[1:] {
		if common.IsHidden(segment) {
			return true
		}
	}
	return false
}

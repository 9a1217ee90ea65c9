package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"

	"github.com/rs/zerolog"
)

// TraversalStats tracks counts gathered during a walk
type TraversalStats struct {
	DirsProcessed  int64
	FilesProcessed int64
	ErrorsFound    int64
	Duration       time.Duration
}

// Option customizes a Snapshotter or Merger.
type Option func(*walkerConfig)

type walkerConfig struct {
	logger     zerolog.Logger
	ignoreFile string
	now        func() time.Time
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *walkerConfig) {
		c.logger = logger
	}
}

// WithIgnoreFile names the ignore file looked up at the traversal root.
// An empty name disables ignore rules.
func WithIgnoreFile(name string) Option {
	return func(c *walkerConfig) {
		c.ignoreFile = name
	}
}

// WithClock overrides the wall clock used for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *walkerConfig) {
		c.now = now
	}
}

func newWalkerConfig(opts []Option) walkerConfig {
	cfg := walkerConfig{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Snapshotter builds a fresh memory tree from the filesystem.
type Snapshotter struct {
	cfg       walkerConfig
	pathUtils *common.PathUtils
}

// NewSnapshotter creates a Snapshotter
func NewSnapshotter(opts ...Option) *Snapshotter {
	return &Snapshotter{
		cfg:       newWalkerConfig(opts),
		pathUtils: common.NewPathUtils(),
	}
}

// Snapshot walks rootPath and returns its tree. The walk is sequential and
// uses an explicit stack; symbolic links below the root are recorded as
// files and never followed. A directory that cannot be listed gets its
// Error field set and the walk carries on with its siblings.
func (s *Snapshotter) Snapshot(ctx context.Context, rootPath string) (*trees.DirectoryNode, error) {
	if err := s.pathUtils.ValidatePath(rootPath); err != nil {
		return nil, err
	}
	absRoot := s.pathUtils.NormalizePath(rootPath)

	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, absRoot)
		}
		return nil, fmt.Errorf("%w: stat %s: %w", common.ErrIO, absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", common.ErrNotADirectory, absRoot)
	}

	rules, err := LoadIgnoreRules(absRoot, s.cfg.ignoreFile)
	if err != nil {
		s.cfg.logger.Warn().Err(err).Str("root", absRoot).Msg("ignore rules unavailable, continuing without them")
		rules = nullIgnoreChecker{}
	}

	start := s.cfg.now()
	stats := &TraversalStats{}

	s.cfg.logger.Info().
		Str("root", absRoot).
		Str("operation", "snapshot").
		Msg("starting tree walk")

	root := trees.NewDirectoryNode(absRoot)
	root.Metadata = trees.NewMetadata(info, start)

	stack := []*trees.DirectoryNode{root}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stats.DirsProcessed++

		result := listDirectory(dir.FullPath, absRoot, rules)
		for _, entry := range result.entries {
			childPath := filepath.Join(dir.FullPath, entry.Name())
			if entry.IsDir() {
				child := trees.NewDirectoryNode(childPath)
				child.Metadata = s.entryMetadata(entry)
				dir.AddChild(child)
				stack = append(stack, child)
				continue
			}
			file := trees.NewFileNode(childPath)
			file.Metadata = s.entryMetadata(entry)
			dir.AddChild(file)
			stats.FilesProcessed++
		}

		if result.err != nil {
			stats.ErrorsFound++
			dir.Error = common.ListingError(result.err)
			s.cfg.logger.Warn().
				Str("path", dir.FullPath).
				Err(result.err).
				Msg("error listing directory")
		}
	}

	stats.Duration = s.cfg.now().Sub(start)
	s.logStats("snapshot", absRoot, stats)

	return root, nil
}

// entryMetadata stats an entry without following links. Stat failures
// degrade to a timestamp-only record.
func (s *Snapshotter) entryMetadata(entry os.DirEntry) trees.Metadata {
	now := s.cfg.now()
	info, err := entry.Info()
	if err != nil {
		return trees.StampOnlyMetadata(now)
	}
	return trees.NewMetadata(info, now)
}

func (s *Snapshotter) logStats(operation, root string, stats *TraversalStats) {
	logStats(s.cfg.logger, operation, root, stats)
}

func logStats(logger zerolog.Logger, operation, root string, stats *TraversalStats) {
	logger.Info().
		Str("operation", operation).
		Str("root", root).
		Int64("dirs", stats.DirsProcessed).
		Int64("files", stats.FilesProcessed).
		Int64("errors", stats.ErrorsFound).
		Dur("duration", stats.Duration).
		Msg("tree walk complete")
}

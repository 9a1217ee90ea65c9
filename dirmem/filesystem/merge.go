package filesystem

import (
	"context"
	"path/filepath"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"
)

// Merger reconciles a stored tree with the live filesystem.
type Merger struct {
	cfg       walkerConfig
	pathUtils *common.PathUtils
}

// NewMerger creates a Merger
func NewMerger(opts ...Option) *Merger {
	return &Merger{
		cfg:       newWalkerConfig(opts),
		pathUtils: common.NewPathUtils(),
	}
}

// Merge updates previous in place against livePath and returns it.
//
// For every directory the children are rebuilt from the current listing:
// a child whose name and kind still match is reused (directories are merged
// recursively against their live path, files are kept as is), anything else
// becomes a fresh node with no description or metadata. Entries that are
// gone from disk are dropped. File roots are returned untouched.
func (m *Merger) Merge(ctx context.Context, previous trees.Node, livePath string) (trees.Node, error) {
	root, ok := previous.(*trees.DirectoryNode)
	if !ok {
		return previous, nil
	}

	absRoot := m.pathUtils.NormalizePath(livePath)
	rules, err := LoadIgnoreRules(absRoot, m.cfg.ignoreFile)
	if err != nil {
		m.cfg.logger.Warn().Err(err).Str("root", absRoot).Msg("ignore rules unavailable, continuing without them")
		rules = nullIgnoreChecker{}
	}

	type job struct {
		dir  *trees.DirectoryNode
		live string
	}

	start := m.cfg.now()
	stats := &TraversalStats{}
	stack := []job{{dir: root, live: absRoot}}

	m.cfg.logger.Info().
		Str("root", absRoot).
		Str("operation", "merge").
		Msg("starting tree walk")

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stats.DirsProcessed++

		existing := make(map[string]trees.Node, len(current.dir.Children))
		for _, child := range current.dir.Children {
			if _, seen := existing[child.GetName()]; !seen {
				existing[child.GetName()] = child
			}
		}

		result := listDirectory(current.live, absRoot, rules)
		children := make([]trees.Node, 0, len(result.entries))

		for _, entry := range result.entries {
			name := entry.Name()
			childLive := filepath.Join(current.live, name)
			prev, found := existing[name]

			if entry.IsDir() {
				dir, reuse := prev.(*trees.DirectoryNode)
				if !found || !reuse {
					dir = trees.NewDirectoryNode(childLive)
				}
				children = append(children, dir)
				stack = append(stack, job{dir: dir, live: childLive})
				continue
			}

			stats.FilesProcessed++
			if file, reuse := prev.(*trees.FileNode); found && reuse {
				children = append(children, file)
				continue
			}
			children = append(children, trees.NewFileNode(childLive))
		}

		if result.err != nil {
			stats.ErrorsFound++
			current.dir.Error = common.ListingError(result.err)
			m.cfg.logger.Warn().
				Str("path", current.live).
				Err(result.err).
				Msg("error listing directory")
		} else {
			current.dir.Error = ""
		}
		current.dir.Children = children
	}

	stats.Duration = m.cfg.now().Sub(start)
	logStats(m.cfg.logger, "merge", absRoot, stats)

	return root, nil
}

package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/dirmem/dirmem"
	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store persists memory documents as indented JSON files.
type Store struct {
	backupSuffix string
	logger       zerolog.Logger
	errorUtils   *common.ErrorUtils
}

// NewStore creates a Store. An empty backupSuffix selects the default.
func NewStore(backupSuffix string, logger zerolog.Logger) *Store {
	if backupSuffix == "" {
		backupSuffix = internal.DefaultBackupSuffix
	}
	return &Store{
		backupSuffix: backupSuffix,
		logger:       logger,
		errorUtils:   common.NewErrorUtils(logger),
	}
}

// BackupPath returns where the previous generation of path is kept.
func (s *Store) BackupPath(path string) string {
	return path + s.backupSuffix
}

// Load reads and decodes the document at path.
func (s *Store) Load(path string) (trees.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyReadError(path, err)
	}

	node, err := trees.DecodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return node, nil
}

// Encode renders node in the persisted layout: four-space indentation,
// HTML and non-ASCII characters unescaped, trailing newline.
func (s *Store) Encode(node trees.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", internal.DefaultDocumentIndentSize))
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("%w: encode document: %w", common.ErrIO, err)
	}
	return buf.Bytes(), nil
}

// Save writes node to path.
//
// Without overwrite an existing destination is left alone and
// ErrAlreadyExists is returned. With overwrite the existing file is first
// moved to its backup path, replacing any earlier backup. The content is
// staged in a temporary sibling and renamed into place.
func (s *Store) Save(node trees.Node, path string, overwrite bool) error {
	if path == "" {
		return fmt.Errorf("%w: empty document path", common.ErrInvalidArguments)
	}

	data, err := s.Encode(node)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", common.ErrIO, dir, err)
	}

	exists, err := fileExists(path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", common.ErrIO, path, err)
	}
	if exists && !overwrite {
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, path)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %w", common.ErrIO, tmp, err)
	}

	if exists {
		backup := s.BackupPath(path)
		if err := os.Rename(path, backup); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("%w: %s -> %s: %w", common.ErrBackupFailed, path, backup, err)
		}
		s.logger.Debug().Str("path", path).Str("backup", backup).Msg("previous document moved to backup")
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return s.errorUtils.LogAndWrapError(
			fmt.Errorf("%w: %w", common.ErrIO, err),
			zerolog.ErrorLevel,
			"failed to move document into place at %s", path,
		)
	}

	s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("document saved")
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func classifyReadError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", common.ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", common.ErrPermissionDenied, path)
	default:
		return fmt.Errorf("%w: read %s: %w", common.ErrIO, path, err)
	}
}

package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem"
	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	dir   string
	store *Store
}

func (s *StoreTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.store = NewStore("", zerolog.Nop())
}

func (s *StoreTestSuite) sampleTree(name string) *trees.DirectoryNode {
	root := trees.NewDirectoryNode(filepath.Join("/data", name))
	root.Description = "sample " + name
	root.AddChild(trees.NewFileNode(filepath.Join("/data", name, "a.txt")))
	return root
}

func (s *StoreTestSuite) read(path string) []byte {
	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	return data
}

func (s *StoreTestSuite) TestSaveCreatesParentsAndIndents() {
	path := filepath.Join(s.dir, "nested", "deeper", "memory.json")

	s.Require().NoError(s.store.Save(s.sampleTree("root"), path, false))

	data := string(s.read(path))
	s.True(strings.HasPrefix(data, "{\n    \"name\": \"root\","), data)
	s.True(strings.HasSuffix(data, "}\n"))
	s.Contains(data, "\n    \"children\": [\n        {\n            \"name\": \"a.txt\",")
}

func (s *StoreTestSuite) TestSaveWithoutOverwriteKeepsExistingBytes() {
	path := filepath.Join(s.dir, "memory.json")
	s.Require().NoError(os.WriteFile(path, []byte("original"), 0o644))

	err := s.store.Save(s.sampleTree("root"), path, false)

	s.ErrorIs(err, common.ErrAlreadyExists)
	s.Equal("original", string(s.read(path)))
	s.NoFileExists(path + ".bkp")
}

func (s *StoreTestSuite) TestOverwriteRotatesBackup() {
	path := filepath.Join(s.dir, "memory.json")
	s.Require().NoError(os.WriteFile(path, []byte("generation-1"), 0o644))
	s.Require().NoError(os.WriteFile(path+".bkp", []byte("ancient backup"), 0o644))

	s.Require().NoError(s.store.Save(s.sampleTree("second"), path, true))
	s.Equal("generation-1", string(s.read(path+".bkp")))
	second := s.read(path)

	s.Require().NoError(s.store.Save(s.sampleTree("third"), path, true))
	s.Equal(second, s.read(path+".bkp"))
	s.Contains(string(s.read(path)), "sample third")
}

func (s *StoreTestSuite) TestCustomBackupSuffix() {
	store := NewStore(".prev", zerolog.Nop())
	path := filepath.Join(s.dir, "memory.json")
	s.Require().NoError(os.WriteFile(path, []byte("old"), 0o644))

	s.Require().NoError(store.Save(s.sampleTree("root"), path, true))

	s.Equal(path+".prev", store.BackupPath(path))
	s.Equal("old", string(s.read(path+".prev")))
}

func (s *StoreTestSuite) TestBackupFailureLeavesOriginal() {
	path := filepath.Join(s.dir, "memory.json")
	s.Require().NoError(os.WriteFile(path, []byte("original"), 0o644))
	// A non-empty directory cannot be replaced by a rename.
	s.Require().NoError(os.MkdirAll(filepath.Join(path+".bkp", "occupied"), 0o755))

	err := s.store.Save(s.sampleTree("root"), path, true)

	s.ErrorIs(err, common.ErrBackupFailed)
	s.Equal("original", string(s.read(path)))
	s.noTempFiles()
}

func (s *StoreTestSuite) TestSaveLeavesNoTempFiles() {
	path := filepath.Join(s.dir, "memory.json")
	s.Require().NoError(s.store.Save(s.sampleTree("root"), path, false))
	s.Require().NoError(s.store.Save(s.sampleTree("root"), path, true))
	s.noTempFiles()
}

func (s *StoreTestSuite) noTempFiles() {
	matches, err := filepath.Glob(filepath.Join(s.dir, ".*.tmp"))
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *StoreTestSuite) TestSaveRejectsEmptyPath() {
	s.ErrorIs(s.store.Save(s.sampleTree("root"), "", true), common.ErrInvalidArguments)
}

func (s *StoreTestSuite) TestSaveWritesCharactersVerbatim() {
	root := trees.NewDirectoryNode("/data/ñandú")
	root.Description = "a <b> & c"
	path := filepath.Join(s.dir, "memory.json")

	s.Require().NoError(s.store.Save(root, path, false))

	data := string(s.read(path))
	s.Contains(data, `"name": "ñandú"`)
	s.Contains(data, `"description": "a <b> & c"`)
}

func (s *StoreTestSuite) TestLoadErrors() {
	tests := []struct {
		name    string
		content *string
		wantErr error
	}{
		{name: "missing file", wantErr: common.ErrNotFound},
		{name: "not json", content: ptr("{nope"), wantErr: common.ErrInvalidJSON},
		{name: "array at top level", content: ptr(`[1, 2]`), wantErr: common.ErrInvalidSchema},
		{name: "node without type", content: ptr(`{"name": "x"}`), wantErr: common.ErrInvalidSchema},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			path := filepath.Join(s.T().TempDir(), "memory.json")
			if tt.content != nil {
				s.Require().NoError(os.WriteFile(path, []byte(*tt.content), 0o644))
			}
			_, err := s.store.Load(path)
			s.ErrorIs(err, tt.wantErr)
		})
	}
}

func (s *StoreTestSuite) TestSnapshotSaveLoadSaveIsByteIdentical() {
	live := filepath.Join(s.dir, "live")
	s.Require().NoError(os.MkdirAll(filepath.Join(live, "sub", "deeper"), 0o755))
	s.Require().NoError(os.WriteFile(filepath.Join(live, "a.txt"), []byte("hello"), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(live, "sub", "b.txt"), []byte("world!"), 0o644))

	root, err := filesystem.NewSnapshotter().Snapshot(context.Background(), live)
	s.Require().NoError(err)
	root.Description = "described"

	first := filepath.Join(s.dir, "first.json")
	second := filepath.Join(s.dir, "second.json")
	s.Require().NoError(s.store.Save(root, first, false))

	loaded, err := s.store.Load(first)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(loaded, second, false))

	s.Equal(s.read(first), s.read(second))
}

func ptr(s string) *string { return &s }

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

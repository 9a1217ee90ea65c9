package trees

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenDirectories_PreOrder(t *testing.T) {
	root := NewDirectoryNode("/r")
	a := NewDirectoryNode("/r/a")
	ab := NewDirectoryNode("/r/a/b")
	c := NewDirectoryNode("/r/c")
	a.AddChild(ab)
	a.AddChild(NewFileNode("/r/a/f.txt"))
	root.AddChild(a)
	root.AddChild(NewFileNode("/r/x.txt"))
	root.AddChild(c)

	entries := FlattenDirectories(root)

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	assert.Equal(t, []string{"r", "r/a", "r/a/b", "r/c"}, paths)
	assert.Equal(t, "/r/a/b", entries[2].FullPath)
	assert.Same(t, ab, entries[2].Node)
}

func TestFlattenDirectories_FileRoot(t *testing.T) {
	assert.Empty(t, FlattenDirectories(NewFileNode("/r/x.txt")))
	assert.Empty(t, FlattenDirectories(nil))
}

func TestWalk_SkipChildren(t *testing.T) {
	root := sampleTree()
	var visited []string
	Walk(root, func(path string, node Node) bool {
		visited = append(visited, path)
		return node.GetName() != "docs"
	})
	assert.Equal(t, []string{"root", "root/a.txt", "root/docs", "root/src"}, visited)
}

func TestLocate(t *testing.T) {
	root := sampleTree()

	tests := []struct {
		name     string
		path     string
		wantName string
		wantErr  bool
	}{
		{"empty path is root", "", "root", false},
		{"slash is root", "/", "root", false},
		{"directory", "docs", "docs", false},
		{"extra slashes", "//docs//", "docs", false},
		{"file", "docs/readme.md", "readme.md", false},
		{"missing", "nope", "", true},
		{"below a file", "a.txt/more", "", true},
		{"root name is not a segment", "root/docs", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Locate(root, tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrNotFound)
				assert.Nil(t, node)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, node.GetName())
		})
	}
}

func TestLocateDirectory(t *testing.T) {
	root := sampleTree()

	dir, err := LocateDirectory(root, "docs")
	require.NoError(t, err)
	assert.Equal(t, "notes about cats", dir.Description)

	_, err = LocateDirectory(root, "a.txt")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = Locate(nil, "x")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestJoinNamePath(t *testing.T) {
	assert.Equal(t, "a", JoinNamePath("", "a"))
	assert.Equal(t, "a/b", JoinNamePath("a", "b"))
	assert.Equal(t, "/b", JoinNamePath("/", "b"))
}

func TestPathIndex(t *testing.T) {
	root := NewDirectoryNode("/r")
	for _, name := range []string{"b", "a", "a-b"} {
		root.AddChild(NewDirectoryNode("/r/" + name))
	}
	root.Children[1].(*DirectoryNode).AddChild(NewDirectoryNode("/r/a/deep"))

	idx := BuildPathIndex(root)
	assert.Equal(t, 5, idx.Size())

	t.Run("lookup", func(t *testing.T) {
		entry, ok := idx.Lookup("r/a/deep")
		require.True(t, ok)
		assert.Equal(t, "/r/a/deep", entry.FullPath)

		entry, ok = idx.Lookup("r/a/")
		require.True(t, ok)
		assert.Equal(t, "r/a", entry.Path)

		_, ok = idx.Lookup("r/zzz")
		assert.False(t, ok)
	})

	t.Run("subtree is sorted and boundary aware", func(t *testing.T) {
		paths := func(entries []DirectoryEntry) []string {
			out := make([]string, len(entries))
			for i, e := range entries {
				out[i] = e.Path
			}
			return out
		}

		assert.Equal(t, []string{"r", "r/a", "r/a-b", "r/a/deep", "r/b"}, paths(idx.Subtree("")))
		assert.Equal(t, []string{"r/a", "r/a/deep"}, paths(idx.Subtree("r/a")))
		assert.Empty(t, idx.Subtree("r/q"))
	})

	t.Run("insert", func(t *testing.T) {
		require.Error(t, idx.Insert(DirectoryEntry{}))
		require.NoError(t, idx.Insert(DirectoryEntry{Path: "r/new", FullPath: "/r/new"}))
		_, ok := idx.Lookup("r/new")
		assert.True(t, ok)
	})
}

func TestMetadata(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("merge into nil allocates and stamps", func(t *testing.T) {
		var m Metadata
		out := m.Merge(map[string]any{"owner": "team"}, now)
		assert.Equal(t, "team", out["owner"])
		assert.Equal(t, FormatTimestamp(now), out[MetaLastMetadataUpdate])
	})

	t.Run("patch wins but timestamp wins over patch", func(t *testing.T) {
		m := Metadata{"tag": "old", "keep": 1}
		out := m.Merge(map[string]any{"tag": "new", MetaLastMetadataUpdate: "bogus"}, now)
		assert.Equal(t, "new", out["tag"])
		assert.Equal(t, 1, out["keep"])
		assert.Equal(t, FormatTimestamp(now), out[MetaLastMetadataUpdate])
	})

	t.Run("generated from path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "f.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o640))

		m, err := GenerateMetadataFromPath(path, now)
		require.NoError(t, err)
		assert.Equal(t, int64(5), m[MetaSizeBytes])
		assert.Equal(t, "640", m[MetaPermissions])
		assert.NotEmpty(t, m[MetaModified])
		assert.NotEmpty(t, m[MetaCreated])
		assert.NotEmpty(t, m[MetaOwner])

		_, err = GenerateMetadataFromPath(filepath.Join(t.TempDir(), "missing"), now)
		assert.Error(t, err)
	})

	t.Run("stamp only", func(t *testing.T) {
		assert.Equal(t, Metadata{MetaLastMetadataUpdate: FormatTimestamp(now)}, StampOnlyMetadata(now))
	})

	t.Run("clone", func(t *testing.T) {
		var m Metadata
		assert.Nil(t, m.Clone())
		orig := Metadata{"a": 1}
		c := orig.Clone()
		c["a"] = 2
		assert.Equal(t, 1, orig["a"])
	})
}

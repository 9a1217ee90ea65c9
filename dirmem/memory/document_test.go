package memory

import (
	"encoding/json"
	"testing"

	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMarshalJSON(t *testing.T) {
	root := trees.NewDirectoryNode("/data/root")

	tests := []struct {
		name string
		doc  *Document
		want string
	}{
		{
			name: "plain root",
			doc:  &Document{Root: root},
			want: `{"name":"root","type":"directory","description":"","full_path":"/data/root","children":[]}`,
		},
		{
			name: "saved",
			doc:  &Document{Root: root, GeneratedFilePath: "/state/memory.json"},
			want: `{"name":"root","type":"directory","description":"","full_path":"/data/root","children":[],"generated_file_path":"/state/memory.json"}`,
		},
		{
			name: "save failed",
			doc:  &Document{Root: root, SaveError: "already exists: /state/memory.json"},
			want: `{"name":"root","type":"directory","description":"","full_path":"/data/root","children":[],"save_error":"already exists: /state/memory.json"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.doc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}

	_, err := json.Marshal(&Document{})
	assert.Error(t, err)
}

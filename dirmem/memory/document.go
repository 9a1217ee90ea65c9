package memory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"
)

// Document is a tree together with the outcome of persisting it. The
// annotations only appear in tool results, never in the saved file.
type Document struct {
	Root              trees.Node
	GeneratedFilePath string
	SaveError         string
}

// MarshalJSON renders the root object with the annotations appended.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d.Root == nil {
		return nil, fmt.Errorf("document has no root")
	}
	body, err := json.Marshal(d.Root)
	if err != nil {
		return nil, err
	}
	if d.GeneratedFilePath == "" && d.SaveError == "" {
		return body, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + 64)
	buf.Write(bytes.TrimSuffix(body, []byte("}")))
	if d.GeneratedFilePath != "" {
		if err := writeAnnotation(&buf, "generated_file_path", d.GeneratedFilePath); err != nil {
			return nil, err
		}
	}
	if d.SaveError != "" {
		if err := writeAnnotation(&buf, "save_error", d.SaveError); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeAnnotation(buf *bytes.Buffer, key, value string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.WriteString(`,"` + key + `":`)
	buf.Write(encoded)
	return nil
}

package trees

import (
	"fmt"
	"maps"
	"os"
	"time"
)

// Metadata holds the optional annotations of a node. The well-known keys are
// filled from stat information; callers may merge arbitrary extra keys.
type Metadata map[string]any

const (
	MetaCreated            = "created"
	MetaModified           = "modified"
	MetaSizeBytes          = "size_bytes"
	MetaPermissions        = "permissions"
	MetaOwner              = "owner"
	MetaLastMetadataUpdate = "last_metadata_update"
)

// TimestampLayout is the format of every timestamp written into metadata.
const TimestampLayout = time.RFC3339Nano

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// NewMetadata builds stat-derived metadata for fileinfo, stamped with now.
func NewMetadata(fileinfo os.FileInfo, now time.Time) Metadata {
	return Metadata{
		MetaCreated:            FormatTimestamp(creationTime(fileinfo)),
		MetaModified:           FormatTimestamp(fileinfo.ModTime()),
		MetaSizeBytes:          fileinfo.Size(),
		MetaPermissions:        fmt.Sprintf("%03o", fileinfo.Mode().Perm()),
		MetaOwner:              getFileOwner(fileinfo),
		MetaLastMetadataUpdate: FormatTimestamp(now),
	}
}

// StampOnlyMetadata is recorded when stat information is unavailable.
func StampOnlyMetadata(now time.Time) Metadata {
	return Metadata{MetaLastMetadataUpdate: FormatTimestamp(now)}
}

// GenerateMetadataFromPath stats nodePath without following a final
// symbolic link.
func GenerateMetadataFromPath(nodePath string, now time.Time) (Metadata, error) {
	fileInfo, err := os.Lstat(nodePath)
	if err != nil {
		return nil, err
	}
	return NewMetadata(fileInfo, now), nil
}

// Merge copies patch into m (patch wins) and then stamps the update time.
// It returns the resulting map, allocating one when m is nil.
func (m Metadata) Merge(patch map[string]any, now time.Time) Metadata {
	out := m
	if out == nil {
		out = make(Metadata, len(patch)+1)
	}
	maps.Copy(out, patch)
	out[MetaLastMetadataUpdate] = FormatTimestamp(now)
	return out
}

// Clone returns a shallow copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

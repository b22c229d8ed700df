package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// ManifestName is the per-folder manifest file naming the original file and
// listing its captured snapshots. Owned by the external store; read-only.
const ManifestName = "entries.json"

// Folder-level skip reasons. All are recoverable: the scan logs the folder
// and continues with the next one. Callers use errors.Is to tell "empty
// because nothing found" apart from "empty because unreadable".
var (
	ErrNoManifest         = errors.New("snapshot folder has no manifest")
	ErrBadManifest        = errors.New("snapshot folder manifest is not parseable")
	ErrNoResource         = errors.New("manifest has no resource reference")
	ErrAllEntriesFiltered = errors.New("manifest has no surviving entries")
)

// manifest mirrors the store's on-disk entries.json shape.
type manifest struct {
	Resource string          `json:"resource"`
	Entries  []manifestEntry `json:"entries"`
}

type manifestEntry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // milliseconds since epoch
}

// ReadFolder reads one snapshot-tracking folder and returns the resource
// reference it tracks plus its surviving version records, sorted newest
// first. Entries are silently dropped when the id or timestamp is absent,
// the referenced artifact is missing from disk, or (unless includeEmpty)
// the artifact is at most one byte — the store's marker for "file was empty
// at this point".
//
// The returned error wraps one of the skip sentinels above; any of them
// means the folder contributes nothing and the caller should move on.
func ReadFolder(folderPath string, includeEmpty bool) (string, []VersionRecord, error) {
	raw, err := os.ReadFile(filepath.Join(folderPath, ManifestName))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrNoManifest, folderPath)
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrBadManifest, folderPath, err)
	}
	if m.Resource == "" {
		return "", nil, fmt.Errorf("%w: %s", ErrNoResource, folderPath)
	}

	folderID := filepath.Base(folderPath)
	var records []VersionRecord
	for _, e := range m.Entries {
		if e.ID == "" || e.Timestamp == 0 {
			continue
		}
		artifact := filepath.Join(folderPath, e.ID)
		info, err := os.Stat(artifact)
		if err != nil {
			continue // artifact vanished; drop rather than keep a dangling ref
		}
		if !includeEmpty && info.Size() <= 1 {
			continue
		}
		records = append(records, VersionRecord{
			SourceRef:        artifact,
			Timestamp:        time.UnixMilli(e.Timestamp),
			TrackingFolderID: folderID,
			Size:             info.Size(),
		})
	}

	if len(records) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrAllEntriesFiltered, folderPath)
	}

	sortNewestFirst(records)
	return m.Resource, records, nil
}

// sortNewestFirst orders records by timestamp descending. The sort is
// stable so ties keep their manifest order across rebuilds.
func sortNewestFirst(records []VersionRecord) {
	slices.SortStableFunc(records, func(a, b VersionRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

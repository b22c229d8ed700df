// Package history reconstructs a navigable index of recoverable files from
// an editor's local-history store: a flat directory of snapshot folders, each
// holding a manifest that names one original file and lists its captured
// snapshots. The package groups snapshots by inferred project, merges folders
// that track the same logical file, and serves lookups from a rebuildable
// in-memory cache.
package history

import "time"

// VersionRecord is one point-in-time snapshot of a file's content.
type VersionRecord struct {
	// SourceRef is the absolute path of the stored snapshot artifact.
	// It refers to an existing, readable file at index-build time; records
	// whose artifact is missing are dropped during the scan.
	SourceRef string

	// Timestamp is the instant the snapshot was captured, as recorded by
	// the store. It is never recomputed from file metadata.
	Timestamp time.Time

	// TrackingFolderID is the name of the snapshot folder this record came
	// from. Kept for traceability only; ordering uses Timestamp.
	TrackingFolderID string

	// Size is the artifact's byte size at scan time.
	Size int64
}

// RecoverableFile is a logical file identified by its original absolute path,
// with all surviving snapshots across every folder that tracked it.
type RecoverableFile struct {
	// OriginalPath is the decoded, normalized absolute path of the file.
	OriginalPath string

	// Versions is ordered newest first (non-increasing by Timestamp) and is
	// never empty.
	Versions []VersionRecord

	// LatestTimestamp always equals Versions[0].Timestamp.
	LatestTimestamp time.Time
}

// Project groups recoverable files under a heuristically inferred
// top-level workspace folder name.
type Project struct {
	Name string

	// Files maps OriginalPath to its RecoverableFile.
	Files map[string]*RecoverableFile
}

// Index maps project name to Project. It is built in one pass over the
// history root and is immutable once returned; any change goes through a
// full rebuild.
type Index struct {
	Projects map[string]*Project
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{Projects: make(map[string]*Project)}
}

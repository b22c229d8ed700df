// Package testutil provides helpers for building fake local-history stores
// under t.TempDir().
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Entry describes one snapshot inside a fixture folder.
type Entry struct {
	ID        string
	Timestamp int64 // milliseconds since epoch
	Content   []byte
}

// WriteSnapshotFolder creates root/folderID with an entries.json manifest
// for the given resource and one artifact file per entry.
func WriteSnapshotFolder(t *testing.T, root, folderID, resource string, entries []Entry) string {
	t.Helper()

	folder := filepath.Join(root, folderID)
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatalf("creating snapshot folder: %v", err)
	}

	type jsonEntry struct {
		ID        string `json:"id"`
		Timestamp int64  `json:"timestamp"`
	}
	manifest := struct {
		Version  int         `json:"version"`
		Resource string      `json:"resource"`
		Entries  []jsonEntry `json:"entries"`
	}{Version: 1, Resource: resource}

	for _, e := range entries {
		manifest.Entries = append(manifest.Entries, jsonEntry{ID: e.ID, Timestamp: e.Timestamp})
		if e.ID == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(folder, e.ID), e.Content, 0644); err != nil {
			t.Fatalf("writing artifact %s: %v", e.ID, err)
		}
	}

	raw, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshaling manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(folder, "entries.json"), raw, 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	return folder
}

// WriteRawManifest creates root/folderID containing the given bytes as its
// manifest, for malformed-manifest cases.
func WriteRawManifest(t *testing.T, root, folderID string, raw []byte) string {
	t.Helper()

	folder := filepath.Join(root, folderID)
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatalf("creating snapshot folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(folder, "entries.json"), raw, 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return folder
}

// FileURI converts an absolute POSIX-style path into a file:// resource
// reference the way the store records them.
func FileURI(path string) string {
	return "file://" + path
}

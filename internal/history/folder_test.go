package history_test

import (
	"errors"
	"path/filepath"
	"testing"

	"lhist/internal/history"
	"lhist/internal/testutil"
)

func TestReadFolder(t *testing.T) {
	t.Parallel()

	t.Run("returns records newest first", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := testutil.WriteSnapshotFolder(t, root, "a1b2", "file:///home/alice/proj/app.py", []testutil.Entry{
			{ID: "x1.py", Timestamp: 1000, Content: []byte("v1")},
			{ID: "x3.py", Timestamp: 3000, Content: []byte("v3")},
			{ID: "x2.py", Timestamp: 2000, Content: []byte("v2")},
		})

		resource, records, err := history.ReadFolder(folder, false)
		if err != nil {
			t.Fatalf("ReadFolder() error = %v", err)
		}
		if resource != "file:///home/alice/proj/app.py" {
			t.Errorf("resource = %q", resource)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		for i := 1; i < len(records); i++ {
			if records[i].Timestamp.After(records[i-1].Timestamp) {
				t.Errorf("records out of order at %d: %v after %v", i, records[i].Timestamp, records[i-1].Timestamp)
			}
		}
		if records[0].TrackingFolderID != "a1b2" {
			t.Errorf("TrackingFolderID = %q, want %q", records[0].TrackingFolderID, "a1b2")
		}
	})

	t.Run("missing manifest", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		_, _, err := history.ReadFolder(filepath.Join(root, "nope"), false)
		if !errors.Is(err, history.ErrNoManifest) {
			t.Errorf("error = %v, want ErrNoManifest", err)
		}
	})

	t.Run("unparseable manifest", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := testutil.WriteRawManifest(t, root, "bad", []byte("{not json"))

		_, _, err := history.ReadFolder(folder, false)
		if !errors.Is(err, history.ErrBadManifest) {
			t.Errorf("error = %v, want ErrBadManifest", err)
		}
	})

	t.Run("manifest without resource", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := testutil.WriteRawManifest(t, root, "nores", []byte(`{"version":1,"entries":[]}`))

		_, _, err := history.ReadFolder(folder, false)
		if !errors.Is(err, history.ErrNoResource) {
			t.Errorf("error = %v, want ErrNoResource", err)
		}
	})

	t.Run("entry with missing artifact is dropped, siblings survive", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := testutil.WriteSnapshotFolder(t, root, "f1", "file:///home/alice/proj/app.py", []testutil.Entry{
			{ID: "keep.py", Timestamp: 2000, Content: []byte("kept")},
		})
		// Reference an artifact that was never written.
		folder = testutil.WriteRawManifest(t, root, "f1",
			[]byte(`{"version":1,"resource":"file:///home/alice/proj/app.py","entries":[{"id":"keep.py","timestamp":2000},{"id":"gone.py","timestamp":3000}]}`))

		_, records, err := history.ReadFolder(folder, false)
		if err != nil {
			t.Fatalf("ReadFolder() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if filepath.Base(records[0].SourceRef) != "keep.py" {
			t.Errorf("surviving record = %s, want keep.py", records[0].SourceRef)
		}
	})

	t.Run("entries missing id or timestamp are dropped", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := testutil.WriteSnapshotFolder(t, root, "f2", "file:///home/alice/proj/app.py", []testutil.Entry{
			{ID: "", Timestamp: 1000},
			{ID: "no-ts.py", Timestamp: 0, Content: []byte("data")},
			{ID: "ok.py", Timestamp: 2000, Content: []byte("data")},
		})

		_, records, err := history.ReadFolder(folder, false)
		if err != nil {
			t.Fatalf("ReadFolder() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
	})

	t.Run("one-byte artifact excluded by default, included with includeEmpty", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := testutil.WriteSnapshotFolder(t, root, "f3", "file:///home/alice/proj/app.py", []testutil.Entry{
			{ID: "tiny.py", Timestamp: 1000, Content: []byte("\n")},
			{ID: "real.py", Timestamp: 2000, Content: []byte("content")},
		})

		_, records, err := history.ReadFolder(folder, false)
		if err != nil {
			t.Fatalf("ReadFolder() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("default: got %d records, want 1", len(records))
		}

		_, records, err = history.ReadFolder(folder, true)
		if err != nil {
			t.Fatalf("ReadFolder(includeEmpty) error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("includeEmpty: got %d records, want 2", len(records))
		}
	})

	t.Run("all entries filtered", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := testutil.WriteSnapshotFolder(t, root, "f4", "file:///home/alice/proj/app.py", []testutil.Entry{
			{ID: "empty.py", Timestamp: 1000, Content: []byte("")},
		})

		_, _, err := history.ReadFolder(folder, false)
		if !errors.Is(err, history.ErrAllEntriesFiltered) {
			t.Errorf("error = %v, want ErrAllEntriesFiltered", err)
		}
	})
}

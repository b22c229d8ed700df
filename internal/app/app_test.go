package app_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lhist/internal/app"
	"lhist/internal/config"
	"lhist/internal/history"
	"lhist/internal/testutil"
)

func newTestApp(t *testing.T, root string) *app.App {
	t.Helper()
	cfg := config.NewConfig(root, t.TempDir())
	a, err := app.NewApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_FindFile(t *testing.T) {
	root := t.TempDir()
	testutil.WriteSnapshotFolder(t, root, "f1", "file:///home/alice/proj/App.py", []testutil.Entry{
		{ID: "a.py", Timestamp: 1000, Content: []byte("print(1)")},
	})
	a := newTestApp(t, root)

	t.Run("exact match", func(t *testing.T) {
		f, err := a.FindFile("proj", "/home/alice/proj/App.py")
		if err != nil {
			t.Fatalf("FindFile() error = %v", err)
		}
		if f.OriginalPath != "/home/alice/proj/App.py" {
			t.Errorf("OriginalPath = %q", f.OriginalPath)
		}
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		f, err := a.FindFile("proj", "/home/alice/proj/app.py")
		if err != nil {
			t.Fatalf("FindFile() error = %v", err)
		}
		if f == nil {
			t.Fatal("FindFile() returned nil file")
		}
	})

	t.Run("unknown path errors", func(t *testing.T) {
		if _, err := a.FindFile("proj", "/home/alice/proj/other.py"); err == nil {
			t.Error("FindFile() expected error for unknown path")
		}
	})
}

func TestApp_ShowContent(t *testing.T) {
	root := t.TempDir()
	testutil.WriteSnapshotFolder(t, root, "f1", "file:///home/alice/proj/app.py", []testutil.Entry{
		{ID: "v1.py", Timestamp: 1000, Content: []byte("old")},
		{ID: "v2.py", Timestamp: 2000, Content: []byte("new")},
	})
	a := newTestApp(t, root)

	t.Run("defaults to newest version", func(t *testing.T) {
		got, err := a.ShowContent("proj", "/home/alice/proj/app.py", "")
		if err != nil {
			t.Fatalf("ShowContent() error = %v", err)
		}
		if got != "new" {
			t.Errorf("ShowContent() = %q, want %q", got, "new")
		}
	})

	t.Run("selects by checksum prefix", func(t *testing.T) {
		sum, err := history.ContentChecksum(history.VersionRecord{
			SourceRef: filepath.Join(root, "f1", "v1.py"),
		})
		if err != nil {
			t.Fatalf("ContentChecksum() error = %v", err)
		}

		got, err := a.ShowContent("proj", "/home/alice/proj/app.py", sum[:8])
		if err != nil {
			t.Fatalf("ShowContent() error = %v", err)
		}
		if got != "old" {
			t.Errorf("ShowContent() = %q, want %q", got, "old")
		}
	})

	t.Run("unknown prefix errors", func(t *testing.T) {
		if _, err := a.ShowContent("proj", "/home/alice/proj/app.py", "zzzzzzzz"); err == nil {
			t.Error("ShowContent() expected error for unknown checksum prefix")
		}
	})
}

func TestApp_Restore(t *testing.T) {
	root := t.TempDir()
	testutil.WriteSnapshotFolder(t, root, "f1", "file:///home/alice/proj/src/app.py", []testutil.Entry{
		{ID: "v1.py", Timestamp: 1000, Content: []byte("restored content")},
	})
	a := newTestApp(t, root)

	t.Run("recreates path relative to project", func(t *testing.T) {
		dest := t.TempDir()
		out, err := a.Restore("proj", "/home/alice/proj/src/app.py", "", dest)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		want := filepath.Join(dest, "src", "app.py")
		if out != want {
			t.Errorf("Restore() = %q, want %q", out, want)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading restored file: %v", err)
		}
		if string(data) != "restored content" {
			t.Errorf("restored content = %q", data)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		dest := t.TempDir()
		if _, err := a.Restore("proj", "/home/alice/proj/src/app.py", "", dest); err != nil {
			t.Fatalf("first Restore() error = %v", err)
		}
		_, err := a.Restore("proj", "/home/alice/proj/src/app.py", "", dest)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("second Restore() error = %v, want already-exists", err)
		}
	})

	t.Run("refuses to restore into the history store", func(t *testing.T) {
		_, err := a.Restore("proj", "/home/alice/proj/src/app.py", "", filepath.Join(root, "out"))
		if err == nil {
			t.Error("Restore() expected error for destination inside the store")
		}
	})
}

func TestApp_Refresh(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)

	names, err := a.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty index, got %v", names)
	}

	testutil.WriteSnapshotFolder(t, root, "f1", "file:///home/alice/proj/a.py", []testutil.Entry{
		{ID: "a.py", Timestamp: 1000, Content: []byte("xx")},
	})

	a.Refresh()
	names, err = a.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects() after Refresh error = %v", err)
	}
	if len(names) != 1 || names[0] != "proj" {
		t.Errorf("ListProjects() = %v, want [proj]", names)
	}
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HistoryRoot: "/home/user/.config/Code/User/History",
		LogDir:      "/home/user/.local/share/lhist/log",
		Scanner: ScannerConfig{
			IncludeEmpty:    true,
			ProjectDenylist: []string{"sandbox", "tmp"},
			Ignore:          []string{"**/*.tmp", "**/node_modules/**"},
		},
		Serve: ServeConfig{Addr: "127.0.0.1:9000", Watch: true},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HistoryRoot != original.HistoryRoot {
		t.Errorf("HistoryRoot = %q, want %q", got.HistoryRoot, original.HistoryRoot)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if !got.Scanner.IncludeEmpty {
		t.Error("Scanner.IncludeEmpty = false, want true")
	}
	if len(got.Scanner.ProjectDenylist) != 2 {
		t.Fatalf("len(Scanner.ProjectDenylist) = %d, want 2", len(got.Scanner.ProjectDenylist))
	}
	if len(got.Scanner.Ignore) != 2 {
		t.Fatalf("len(Scanner.Ignore) = %d, want 2", len(got.Scanner.Ignore))
	}
	if got.Serve.Addr != "127.0.0.1:9000" {
		t.Errorf("Serve.Addr = %q, want %q", got.Serve.Addr, "127.0.0.1:9000")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/stores/history", "/data/lhist")

	if cfg.HistoryRoot != "/stores/history" {
		t.Errorf("HistoryRoot = %q, want %q", cfg.HistoryRoot, "/stores/history")
	}
	if cfg.LogDir != "/data/lhist/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/lhist/log")
	}
	if cfg.Serve.Addr == "" {
		t.Error("Serve.Addr is empty, want a default")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "lhist.toml")
		cfg := NewConfig("/stores/history", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "lhist.toml")
		cfg := NewConfig("/stores/history", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "lhist.toml")
		cfg := NewConfig("/stores/history", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HistoryRoot != "/stores/history" {
			t.Errorf("HistoryRoot = %q, want %q", got.HistoryRoot, "/stores/history")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/lhist.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for lhist.
type Config struct {
	HistoryRoot string        `toml:"history_root"`
	LogDir      string        `toml:"log_dir"`
	Scanner     ScannerConfig `toml:"scanner"`
	Serve       ServeConfig   `toml:"serve"`
}

// ScannerConfig holds settings for the history scan itself.
type ScannerConfig struct {
	// IncludeEmpty keeps degenerate one-byte snapshots in the index.
	IncludeEmpty bool `toml:"include_empty"`

	// ProjectDenylist extends the built-in set of generic container-folder
	// names skipped during project-name inference.
	ProjectDenylist []string `toml:"project_denylist"`

	// Ignore lists glob patterns (doublestar syntax, matched against the
	// forward-slash form of the original path) for files to exclude from
	// the index entirely.
	Ignore []string `toml:"ignore"`
}

// ServeConfig holds settings for the HTTP API server.
type ServeConfig struct {
	Addr string `toml:"addr"`

	// Watch invalidates the index cache when the history root changes on
	// disk while the server runs.
	Watch bool `toml:"watch"`
}

// NewConfig creates a new Config with the provided history root and defaults
// derived from the given base directory.
func NewConfig(historyRoot, baseDir string) *Config {
	return &Config{
		HistoryRoot: historyRoot,
		LogDir:      filepath.Join(baseDir, "log"),
		Serve: ServeConfig{
			Addr:  "127.0.0.1:7341",
			Watch: true,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided
// Config. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

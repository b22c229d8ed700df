package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lhist/internal/config"
	"lhist/internal/history"

	"github.com/google/uuid"
)

// App is the application layer between the CLI (or HTTP API) and the
// history core. It constructs the scanner from config, owns the index
// cache, and exposes high-level operations that accept raw strings.
type App struct {
	cfg     *config.Config
	cache   *history.Cache
	logger  history.Logger
	logFile *os.File
	watcher *storeWatcher
}

// NewApp creates a fully wired App from the given config. operation
// identifies the command being run (e.g. "ListProjects", "Restore") and is
// stamped onto every log line of this run. The caller must call Close when
// done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	runID := fmt.Sprintf("%s-%s", operation, uuid.New().String()[:8])
	slogger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	builder := history.NewBuilder(cfg.HistoryRoot, logger,
		history.WithIncludeEmpty(cfg.Scanner.IncludeEmpty),
		history.WithProjectDenylist(cfg.Scanner.ProjectDenylist),
		history.WithIgnoreGlobs(cfg.Scanner.Ignore),
	)
	cache := history.NewCache(builder, logger)

	return &App{
		cfg:     cfg,
		cache:   cache,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Cache exposes the index cache to in-process consumers such as the HTTP
// API. The cache serializes its own rebuilds.
func (a *App) Cache() *history.Cache {
	return a.cache
}

// Logger exposes the run-scoped logger for in-process consumers.
func (a *App) Logger() history.Logger {
	return a.logger
}

// ListProjects returns the sorted project names in the current index.
func (a *App) ListProjects() ([]string, error) {
	return a.cache.ListProjects()
}

// FilesFor returns the recoverable files of the named project.
func (a *App) FilesFor(project string) (map[string]*history.RecoverableFile, error) {
	return a.cache.FilesFor(project)
}

// FindFile looks up one recoverable file within a project. The path match
// is case-insensitive so that a user can paste a path from a
// case-preserving but case-insensitive filesystem.
func (a *App) FindFile(project, path string) (*history.RecoverableFile, error) {
	files, err := a.cache.FilesFor(project)
	if err != nil {
		return nil, err
	}
	if f, ok := files[path]; ok {
		return f, nil
	}
	for stored, f := range files {
		if strings.EqualFold(stored, path) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no history for %s in project %s", path, project)
}

// ShowContent returns the text of one version of a file. versionPrefix
// selects a version by content checksum prefix; empty selects the newest.
func (a *App) ShowContent(project, path, versionPrefix string) (string, error) {
	file, err := a.FindFile(project, path)
	if err != nil {
		return "", err
	}
	rec, err := selectVersion(file, versionPrefix)
	if err != nil {
		return "", err
	}
	return history.ReadContent(rec), nil
}

// Restore copies one version of a file under destRoot, recreating the
// file's path relative to its project folder. It refuses to write into the
// history store and refuses to overwrite an existing file. Returns the
// path written.
func (a *App) Restore(project, path, versionPrefix, destRoot string) (string, error) {
	file, err := a.FindFile(project, path)
	if err != nil {
		return "", err
	}
	rec, err := selectVersion(file, versionPrefix)
	if err != nil {
		return "", err
	}

	rel, ok := history.RelativeToProject(file.OriginalPath, project)
	if !ok {
		rel = filepath.Base(strings.ReplaceAll(file.OriginalPath, `\`, "/"))
	}
	dest := filepath.Join(destRoot, filepath.FromSlash(rel))

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving destination: %w", err)
	}
	absRoot, err := filepath.Abs(a.cfg.HistoryRoot)
	if err == nil && strings.HasPrefix(absDest, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing to restore into the history store: %s", absDest)
	}

	if _, err := os.Stat(absDest); err == nil {
		return "", fmt.Errorf("destination already exists: %s", absDest)
	}
	if err := os.MkdirAll(filepath.Dir(absDest), 0755); err != nil {
		return "", fmt.Errorf("creating destination directory: %w", err)
	}

	if err := copyFile(rec.SourceRef, absDest); err != nil {
		return "", err
	}

	a.logger.Info("version restored", "path", absDest, "from", rec.SourceRef)
	return absDest, nil
}

// Refresh marks the index stale; the next query rebuilds it.
func (a *App) Refresh() {
	a.cache.Invalidate()
	a.logger.Info("index invalidated")
}

// WatchStore starts invalidating the cache whenever the history root
// changes on disk. Used by long-running commands; one-shot commands never
// need it.
func (a *App) WatchStore() error {
	if a.watcher != nil {
		return nil
	}
	w, err := newStoreWatcher(a.cfg.HistoryRoot, a.cache, a.logger)
	if err != nil {
		return fmt.Errorf("watching history root: %w", err)
	}
	a.watcher = w
	return nil
}

// Close releases the watcher and the log file.
func (a *App) Close() error {
	var firstErr error

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			firstErr = fmt.Errorf("closing watcher: %w", err)
		}
	}

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}

// selectVersion picks a version from a file, newest by default or by
// content-checksum prefix.
func selectVersion(file *history.RecoverableFile, prefix string) (history.VersionRecord, error) {
	if prefix == "" {
		return file.Versions[0], nil
	}

	for _, rec := range file.Versions {
		sum, err := history.ContentChecksum(rec)
		if err != nil {
			continue // artifact vanished since the scan
		}
		if strings.HasPrefix(sum, prefix) {
			return rec, nil
		}
	}
	return history.VersionRecord{}, fmt.Errorf("no version with checksum prefix %q", prefix)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dest)
		return fmt.Errorf("copying content: %w", err)
	}
	return nil
}

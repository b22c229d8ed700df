package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrRootUnreadable marks a history root that could not be enumerated.
// Builds still return a usable (empty) index alongside it: a missing store
// is an expected condition on a fresh machine, surfaced to the user as
// "no history found" rather than a failure.
var ErrRootUnreadable = errors.New("history root is not readable")

// Builder scans a history root and produces an Index. It only ever reads
// from the root; nothing under it is written, modified, or deleted.
type Builder struct {
	root            string
	includeEmpty    bool
	projectDenylist []string
	ignore          []string
	logger          Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithIncludeEmpty keeps degenerate one-byte snapshots in the index.
func WithIncludeEmpty(include bool) BuilderOption {
	return func(b *Builder) { b.includeEmpty = include }
}

// WithProjectDenylist extends the built-in container-folder denylist used
// for project-name inference.
func WithProjectDenylist(names []string) BuilderOption {
	return func(b *Builder) { b.projectDenylist = names }
}

// WithIgnoreGlobs excludes files whose decoded original path matches any of
// the given doublestar patterns (matched against the forward-slash form).
func WithIgnoreGlobs(patterns []string) BuilderOption {
	return func(b *Builder) { b.ignore = patterns }
}

// NewBuilder creates a Builder for the given history root.
func NewBuilder(root string, logger Logger, opts ...BuilderOption) *Builder {
	b := &Builder{root: root, logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build enumerates the immediate subdirectories of the history root and
// merges every readable snapshot folder into a fresh Index. Folder-level
// failures are logged and skipped; only an unreadable root is reported, and
// even then the returned index is non-nil and empty.
//
// Rebuilding from unchanged on-disk state reproduces the same index:
// directory enumeration is name-ordered and the per-file merge re-sorts
// with a stable sort, so the result does not depend on scan history.
func (b *Builder) Build() (*Index, error) {
	index := NewIndex()

	entries, err := os.ReadDir(b.root)
	if err != nil {
		return index, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, b.root, err)
	}

	folders := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(b.root, entry.Name())

		resource, records, err := ReadFolder(folderPath, b.includeEmpty)
		if err != nil {
			b.logger.Debug("skipping snapshot folder", "folder", entry.Name(), "reason", err)
			continue
		}

		originalPath := DecodeResourceRef(resource)
		if b.ignored(originalPath) {
			b.logger.Debug("ignoring file", "path", originalPath)
			continue
		}

		b.merge(index, originalPath, records)
		folders++
	}

	b.logger.Info("history index built", "folders", folders, "projects", len(index.Projects))
	return index, nil
}

// merge places records for one original path into the index, creating the
// project and file on first sight and unioning version lists when a second
// folder tracks the same logical file.
func (b *Builder) merge(index *Index, originalPath string, records []VersionRecord) {
	projectName := InferProjectName(originalPath, b.projectDenylist)

	project, ok := index.Projects[projectName]
	if !ok {
		project = &Project{
			Name:  projectName,
			Files: make(map[string]*RecoverableFile),
		}
		index.Projects[projectName] = project
	}

	file, ok := project.Files[originalPath]
	if !ok {
		project.Files[originalPath] = &RecoverableFile{
			OriginalPath:    originalPath,
			Versions:        records,
			LatestTimestamp: records[0].Timestamp,
		}
		return
	}

	file.Versions = append(file.Versions, records...)
	sortNewestFirst(file.Versions)
	file.LatestTimestamp = file.Versions[0].Timestamp
}

func (b *Builder) ignored(originalPath string) bool {
	if len(b.ignore) == 0 {
		return false
	}
	normalized := strings.ReplaceAll(originalPath, `\`, "/")
	for _, pattern := range b.ignore {
		matched, err := doublestar.Match(pattern, normalized)
		if err != nil {
			continue // bad pattern — skip rather than crash
		}
		if matched {
			return true
		}
	}
	return false
}

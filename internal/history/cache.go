package history

import (
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// Cache owns the current Index and serves read-only lookups from it. The
// first query builds the index synchronously; Invalidate marks it stale so
// the next query rebuilds. There is no background refresh.
//
// Each rebuild allocates a fresh Index and swaps a pointer under the mutex,
// so maps handed out by earlier queries stay valid for callers still
// iterating them. Callers must treat returned maps as read-only.
type Cache struct {
	mu      sync.Mutex
	builder *Builder
	logger  Logger

	index    *Index
	buildErr error
	stale    bool
}

// NewCache creates a cache around the given builder. Each Cache is an
// independent unit: tests may run several against different roots in
// parallel.
func NewCache(builder *Builder, logger Logger) *Cache {
	return &Cache{builder: builder, logger: logger}
}

// current returns the cached index, rebuilding if empty or stale.
// Callers hold no lock; the returned index is never mutated after the swap.
func (c *Cache) current() (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index == nil || c.stale {
		index, err := c.builder.Build()
		if err != nil {
			c.logger.Warn("history scan degraded to empty index", "error", err)
		}
		c.index = index
		c.buildErr = err
		c.stale = false
	}

	return c.index, c.buildErr
}

// ListProjects returns the project names in the current index, sorted
// lexicographically. The error is non-nil only when the history root itself
// was unreadable; the name list is still usable (empty) in that case.
func (c *Cache) ListProjects() ([]string, error) {
	index, err := c.current()
	names := maps.Keys(index.Projects)
	slices.Sort(names)
	return names, err
}

// FilesFor returns the file map for the named project (case-sensitive,
// exactly as stored). Unknown names yield an empty map, never an error;
// the error mirrors ListProjects.
func (c *Cache) FilesFor(project string) (map[string]*RecoverableFile, error) {
	index, err := c.current()
	if p, ok := index.Projects[project]; ok {
		return p.Files, err
	}
	return map[string]*RecoverableFile{}, err
}

// Invalidate marks the cache stale without rebuilding. The next query pays
// for the rebuild.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

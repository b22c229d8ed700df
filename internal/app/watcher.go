package app

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"lhist/internal/history"
)

// storeWatcher marks the index cache stale when anything under the history
// root changes. It only invalidates; the rebuild happens synchronously on
// the next query.
type storeWatcher struct {
	fsWatcher *fsnotify.Watcher
	cache     *history.Cache
	logger    history.Logger
	done      chan struct{}
}

// newStoreWatcher watches the root and its immediate snapshot folders. New
// folders are added to the watch as they appear, so manifest rewrites
// inside them are seen too.
func newStoreWatcher(root string, cache *history.Cache, logger history.Logger) (*storeWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if err := fsWatcher.Add(filepath.Join(root, entry.Name())); err != nil {
				logger.Warn("failed to watch snapshot folder", "folder", entry.Name(), "error", err)
			}
		}
	}

	w := &storeWatcher{
		fsWatcher: fsWatcher,
		cache:     cache,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *storeWatcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsWatcher.Add(event.Name); err != nil {
						w.logger.Warn("failed to watch new folder", "path", event.Name, "error", err)
					}
				}
			}
			w.cache.Invalidate()
			w.logger.Debug("history store changed", "path", event.Name, "op", event.Op.String())

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Close stops the watcher and waits for the event loop to drain.
func (w *storeWatcher) Close() error {
	err := w.fsWatcher.Close()
	<-w.done
	return err
}

// Package watcher notifies when the catalog data file changes on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Operation is the kind of change observed on the watched file.
type Operation int

const (
	FileCreated Operation = iota
	FileModified
	FileRemoved
)

func (o Operation) String() string {
	switch o {
	case FileCreated:
		return "created"
	case FileModified:
		return "modified"
	case FileRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event reports a change to the watched file.
type Event struct {
	Path      string
	Operation Operation
}

// FileWatcher watches a single file. It subscribes to the parent directory
// because producers usually replace the file by renaming a temp file over it,
// which drops a watch placed on the file itself.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *slog.Logger
}

// NewFileWatcher creates a watcher for path. The file itself need not exist yet,
// but its directory must.
func NewFileWatcher(path string, logger *slog.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher: w,
		path:    abs,
		logger:  logger,
	}, nil
}

// Watch emits events for the watched file until ctx is done or Stop is called.
func (w *FileWatcher) Watch(ctx context.Context) <-chan Event {
	events := make(chan Event, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}

				var op Operation
				switch {
				case event.Has(fsnotify.Create):
					op = FileCreated
				case event.Has(fsnotify.Write):
					op = FileModified
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					op = FileRemoved
				default:
					continue
				}

				select {
				case events <- Event{Path: w.path, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("file watcher error", "error", err)
			}
		}
	}()

	return events
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Stop stops the watcher.
func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}

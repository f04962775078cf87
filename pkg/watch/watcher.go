// Package watch re-runs the analysis whenever a watched catalog file
// changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	qaerrors "github.com/catqa/catqa/pkg/errors"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher monitors catalog files and triggers re-analysis after writes.
// Rapid write bursts are debounced into a single trigger.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]*fileState
	mu       sync.RWMutex
	debounce time.Duration

	// OnChange is invoked after the debounce window with the changed path.
	OnChange func(path string) error
	// OnError receives watch and callback failures.
	OnError func(path string, err error)
}

type fileState struct {
	lastModified time.Time
	size         int64
	processing   bool
}

// NewWatcher creates a watcher with the default debounce window.
func NewWatcher() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeUnknown, "failed to create file watcher")
	}
	return &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]*fileState),
		debounce: defaultDebounce,
	}, nil
}

// Watch registers a catalog file. The containing directory is watched so
// editors that replace the file instead of writing in place still trigger.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeFileNotFound, "failed to resolve path").
			WithContext("path", path)
	}
	stat, err := os.Stat(absPath)
	if err != nil {
		return qaerrors.FileNotFound(absPath)
	}

	w.mu.Lock()
	w.files[absPath] = &fileState{
		lastModified: stat.ModTime(),
		size:         stat.Size(),
	}
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeUnknown, "failed to watch directory").
			WithContext("path", absPath)
	}
	return nil
}

// Run blocks processing filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	debounceTimers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.RLock()
			state, isWatched := w.files[absPath]
			w.mu.RUnlock()
			if !isWatched {
				continue
			}

			timerMu.Lock()
			if timer, exists := debounceTimers[absPath]; exists {
				timer.Stop()
			}
			debounceTimers[absPath] = time.AfterFunc(w.debounce, func() {
				w.handleChange(absPath, state)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

func (w *Watcher) handleChange(path string, state *fileState) {
	w.mu.Lock()
	if state.processing {
		w.mu.Unlock()
		return
	}
	state.processing = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		state.processing = false
		w.mu.Unlock()
	}()

	stat, err := os.Stat(path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(path, err)
		}
		return
	}

	// Editors fire spurious events; skip when nothing actually changed.
	w.mu.RLock()
	unchanged := stat.ModTime().Equal(state.lastModified) && stat.Size() == state.size
	w.mu.RUnlock()
	if unchanged {
		return
	}

	w.mu.Lock()
	state.lastModified = stat.ModTime()
	state.size = stat.Size()
	w.mu.Unlock()

	if w.OnChange != nil {
		if err := w.OnChange(path); err != nil && w.OnError != nil {
			w.OnError(path, err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

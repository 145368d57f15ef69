package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor produces when
// saving into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports when a model file changes on disk. It watches the
// file's directory so editors that replace the file are still seen.
// Reload requests are delivered on Reloads and must be consumed by the
// render thread; the watcher never loads anything itself.
type Watcher struct {
	path     string
	debounce time.Duration
	fs       *fsnotify.Watcher
	reloads  chan string
	done     chan struct{}
	log      *zap.Logger
}

// NewWatcher starts watching path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		debounce: debounce,
		fs:       fs,
		reloads:  make(chan string, 1),
		done:     make(chan struct{}),
		log:      log().With(zap.String("path", abs)),
	}
	go w.run()
	w.log.Info("watching model file")
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Reloads delivers the file path after each settled change.
func (w *Watcher) Reloads() <-chan string {
	return w.reloads
}

// Close stops the watcher. Reloads is not closed.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) run() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-w.done:
			timer.Stop()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			// A pending request already covers this change
			select {
			case w.reloads <- w.path:
			default:
			}
		}
	}
}

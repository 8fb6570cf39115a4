// Package watcher signals when the chat file has changed and settled. Events
// from a burst of editor writes are coalesced behind a quiescence interval so
// the processing loop always reads one coherent snapshot.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger().WithField("component", "watcher")

// DefaultDebounce is the quiescence interval after the last write.
const DefaultDebounce = 500 * time.Millisecond

// Version identifies one on-disk state of the chat file. The processing loop
// holds the last seen version as an explicit value and compares it once per
// detected change, which also filters out the tool's own appends.
type Version struct {
	ModTime time.Time
	Size    int64
}

// Snapshot reads the file's current version. A missing file yields the zero
// Version without error so a freshly deleted file still compares unequal.
func Snapshot(path string) (Version, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Version{}, nil
		}
		return Version{}, err
	}
	return Version{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Watcher delivers coalesced change signals for a single file. It watches the
// parent directory rather than the file itself so rename-replace saves from
// editors are not lost.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	changes  chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu      sync.Mutex
	running bool
}

// New creates a watcher for path with the given quiescence interval.
func New(path string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		fsw:      fsw,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Changes returns the signal channel. Signals carry no payload; the consumer
// re-reads the file.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
// The watcher only counts as running once the directory watch is registered,
// so a failed Start leaves Stop a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true
	log.WithField("path", w.path).Debug("Watching for changes")

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.fsw.Close(); err != nil {
		log.WithError(err).Warn("Error closing filesystem watcher")
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var lastEvent time.Time
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			lastEvent = time.Now()
			pending = true

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("Watcher error")

		case <-ticker.C:
			if pending && time.Since(lastEvent) >= w.debounce {
				pending = false
				w.signal()
			}
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
		// A signal is already queued; the next read covers this change too.
	}
}

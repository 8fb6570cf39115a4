package watcher

import (
	"context"
	"time"
)

// PollWatcher is a fallback with the same channel contract as Watcher for
// filesystems where inotify-style events are unavailable (network mounts,
// some containers). It emits once a changed version has held still for one
// full interval.
type PollWatcher struct {
	path     string
	interval time.Duration
	changes  chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPoll creates a polling watcher for path.
func NewPoll(path string, interval time.Duration) *PollWatcher {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &PollWatcher{
		path:     path,
		interval: interval,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Changes returns the signal channel.
func (p *PollWatcher) Changes() <-chan struct{} {
	return p.changes
}

// Start begins polling in a goroutine.
func (p *PollWatcher) Start(ctx context.Context) error {
	last, err := Snapshot(p.path)
	if err != nil {
		return err
	}
	go p.run(ctx, last)
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (p *PollWatcher) Stop() {
	close(p.stopCh)
	<-p.doneCh
}

func (p *PollWatcher) run(ctx context.Context, last Version) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			current, err := Snapshot(p.path)
			if err != nil {
				log.WithError(err).Warn("Poll error")
				continue
			}
			if current != last {
				last = current
				dirty = true
				continue
			}
			if dirty {
				dirty = false
				select {
				case p.changes <- struct{}{}:
				default:
				}
			}
		}
	}
}

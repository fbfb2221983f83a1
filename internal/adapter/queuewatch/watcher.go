// Package queuewatch triggers a callback when the city queue file changes.
package queuewatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// DefaultDebounce is how long the queue file must stay quiet before the
// callback fires.
const DefaultDebounce = 2 * time.Second

// Watcher watches a single file. The parent directory is watched rather than
// the file itself so editors that save by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(context.Context)
	clock    clockwork.Clock
	logger   *slog.Logger
}

// New creates a Watcher for path. onChange never runs concurrently with itself.
func New(path string, debounce time.Duration, onChange func(context.Context), clock clockwork.Clock, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		clock:    clock,
		logger:   logger.With("component", "queuewatch", "path", path),
	}
}

// Run watches until ctx is cancelled. The parent directory must exist.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching queue file")

	fire := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-fire:
				w.onChange(ctx)
			}
		}
	}()
	defer wg.Wait()

	var timer clockwork.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events closed")
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug("queue file changed", "op", evt.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = w.clock.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors closed")
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != w.path {
		return false
	}
	return evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

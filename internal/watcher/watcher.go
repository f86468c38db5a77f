package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/internal/media"
)

type implWatcher struct {
	inputDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	cron          *cron.Cron
	sweepSpec     string
	settle        time.Duration
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]bool
	// failed maps a clip whose last attempt failed to its mtime at that
	// time. It is retried only once the file changes.
	failed map[string]time.Time
}

// Start handles clips already waiting in the folder, then reacts to new files
// and to the periodic sweep until ctx is done.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)

	if w.sweepSpec != "" {
		if _, err := w.cron.AddFunc(w.sweepSpec, func() { w.sweep(ctx) }); err != nil {
			return fmt.Errorf("schedule sweep %q: %w", w.sweepSpec, err)
		}
		w.cron.Start()
		defer w.cron.Stop()
	}
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !media.IsSourceClip(event.Name) {
				w.logger.Debug(ctx, "Ignoring file: %s", event.Name)
				continue
			}
			w.logger.Info(ctx, "New clip detected: %s", event.Name)
			w.submit(ctx, event.Name, w.settle)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) Stop() error {
	w.cron.Stop()
	return w.watcher.Close()
}

// sweep submits every clip in the folder that has no output yet.
func (w *implWatcher) sweep(ctx context.Context) {
	clips, err := media.ScanClips(w.inputDir)
	if err != nil {
		w.logger.Error(ctx, "Sweep failed: %v", err)
		return
	}
	for _, path := range clips {
		w.submit(ctx, path, 0)
	}
}

// submit handles path in the background after delay, unless it is already
// being handled, was rendered before or failed and has not changed since.
func (w *implWatcher) submit(ctx context.Context, path string, delay time.Duration) {
	if media.HasOutput(path) || w.failedBefore(path) || !w.claim(path) {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.release(path)

		// Small delay to ensure file is fully written
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}

		select {
		case w.semaphore <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-w.semaphore }()

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
			w.markFailed(path)
		}
	}()
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inflight[path] {
		return false
	}
	w.inflight[path] = true
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, path)
}

func (w *implWatcher) markFailed(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failed[path] = info.ModTime()
}

func (w *implWatcher) failedBefore(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	at, ok := w.failed[path]
	if !ok {
		return false
	}
	if info, err := os.Stat(path); err == nil && info.ModTime().Equal(at) {
		return true
	}
	delete(w.failed, path)
	return false
}

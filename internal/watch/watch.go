// Package watch rebuilds the site when source files change. Change events
// are debounced so editor save bursts trigger one rebuild, and an optional
// interval schedules periodic full rebuilds on top of the change-driven ones.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/stationhq/stylebook/internal/config"
	"github.com/stationhq/stylebook/internal/logfields"
)

// RebuildFunc runs one build. Errors are logged and the watcher keeps going.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors the source directories and triggers debounced rebuilds.
type Watcher struct {
	cfg       *config.Config
	rebuild   RebuildFunc
	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	mu        sync.Mutex
	stopChan  chan struct{}
	eventChan chan struct{}
	stopped   bool
}

// New creates a Watcher over the configured source directories.
func New(cfg *config.Config, rebuild RebuildFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		cfg:       cfg,
		rebuild:   rebuild,
		watcher:   fsw,
		stopChan:  make(chan struct{}),
		eventChan: make(chan struct{}, 1),
	}, nil
}

// Start registers watches and begins the event and rebuild loops. An initial
// build runs before watching so the site exists from the first moment.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range []string{w.cfg.Sources.Rulesets, w.cfg.Sources.Guidelines} {
		if dir == "" {
			continue
		}
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}

	if w.cfg.Watch.Interval > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = s.NewJob(
			gocron.DurationJob(w.cfg.Watch.Interval),
			gocron.NewTask(w.triggerRebuild),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		w.scheduler = s
		s.Start()
		slog.Info("Periodic rebuild scheduled", slog.Duration("interval", w.cfg.Watch.Interval))
	}

	slog.Info("Watching for source changes",
		logfields.Path(w.cfg.Sources.Rulesets),
		slog.String("guidelines", w.cfg.Sources.Guidelines),
		slog.Duration("debounce", w.cfg.Watch.Debounce))

	if err := w.rebuild(ctx); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	go w.watchLoop(ctx)
	go w.rebuildLoop(ctx)
	return nil
}

// Stop shuts down the watcher and the optional scheduler.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true

	close(w.stopChan)
	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			slog.Error("Error stopping scheduler", logfields.Error(err))
		}
	}
	return w.watcher.Close()
}

// addRecursive watches dir and every subdirectory beneath it. fsnotify
// watches are not recursive on their own.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				slog.Debug("Watch directory not found", logfields.Path(root))
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Source change detected",
				logfields.Path(event.Name),
				slog.String("op", event.Op.String()))
			// New subdirectories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Error("Failed to watch new directory", logfields.Error(err))
					}
				}
			}
			w.triggerRebuild()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

// relevant filters out events for files the build would never read.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml", ".md", ".markdown":
		return true
	}
	// Could be a directory event; directories carry no extension.
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

// rebuildLoop collapses bursts of change events into one rebuild per
// debounce window.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.eventChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.Watch.Debounce, func() {
				slog.Info("Rebuilding after source change")
				if err := w.rebuild(ctx); err != nil {
					slog.Error("Rebuild failed", logfields.Error(err))
				}
			})
		}
	}
}

func (w *Watcher) triggerRebuild() {
	select {
	case w.eventChan <- struct{}{}:
	default:
		// Rebuild already pending.
	}
}

package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/McPacket/detection-rules-explorer/internal/config"
)

// BuildFunc receives the outcome of every rebuild triggered by Watch.
type BuildFunc func(*Result, error)

// Watch rebuilds the artifacts from scratch whenever rule files under
// cfg.RulesDir change, until ctx is cancelled. Bursts of events within
// cfg.Watch.Debounce collapse into one rebuild. Watch does not run an initial
// build.
func Watch(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger, onBuild BuildFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, cfg.RulesDir); err != nil {
		return err
	}
	logger.Infow("watching for rule changes", "root", cfg.RulesDir, "debounce", cfg.Watch.Debounce)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(watcher, event, logger) {
				continue
			}
			logger.Debugw("rule change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(cfg.Watch.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watcher error", "error", err)

		case <-timer.C:
			res, err := Run(ctx, cfg, logger)
			if err != nil {
				logger.Errorw("rebuild failed", "error", err)
			}
			if onBuild != nil {
				onBuild(res, err)
			}
		}
	}
}

// relevant reports whether event can change the catalog. New directories are
// added to the watch list as a side effect.
func relevant(w *fsnotify.Watcher, event fsnotify.Event, logger *zap.SugaredLogger) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addTree(w, event.Name); err != nil {
				logger.Warnw("failed to watch new directory", "path", event.Name, "error", err)
			}
			return true
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	ext := filepath.Ext(event.Name)
	if ext == ".yml" || ext == ".yaml" {
		return true
	}
	// Removing or renaming a directory drops every rule inside it.
	return ext == "" && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename))
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
		}
		return nil
	})
}

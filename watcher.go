package cssprite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/yacobolo/cssprite/internal/logging"
)

// Watch regenerates single sprite sets as their directories change. It
// blocks until ctx is cancelled and waits for in-flight regenerations
// before returning. A failing regeneration is logged; the watch goes on.
func (b *Builder) Watch(ctx context.Context) error {
	if !b.cfg.DevWatch {
		return ErrWatchDisabled
	}

	if err := os.MkdirAll(b.cfg.SourceDir, 0755); err != nil {
		return ioError("create directory", b.cfg.SourceDir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// fsnotify is not recursive: watch the root and every set directory
	if err := watcher.Add(b.cfg.SourceDir); err != nil {
		return ioError("watch", b.cfg.SourceDir, err)
	}
	dirs, err := ScanSpriteSets(b.cfg.SourceDir, b.ignore)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		path := filepath.Join(b.cfg.SourceDir, dir)
		if err := watcher.Add(path); err != nil {
			return ioError("watch", path, err)
		}
	}

	b.logger.Info("Watching sprite sets", "dir", b.cfg.SourceDir, "sets", len(dirs))
	if b.onWatchReady != nil {
		b.onWatchReady()
	}

	for {
		select {
		case <-ctx.Done():
			b.guard.wait()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				b.guard.wait()
				return nil
			}
			b.handleEvent(ctx, watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				b.guard.wait()
				return nil
			}
			b.logger.Warn("Watcher error", "error", err)
		}
	}
}

// handleEvent maps one notification to its sprite set and schedules it
func (b *Builder) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	// Permission changes don't alter image content
	if event.Op == fsnotify.Chmod {
		return
	}

	dir, isSetDir, ok := b.setDirFor(event.Name)
	if !ok {
		return
	}

	if isSetDir && event.Has(fsnotify.Create) {
		if err := watcher.Add(event.Name); err != nil {
			b.logger.Warn("Cannot watch sprite set", "dir", event.Name, "error", err)
		}
	}

	b.logger.Debug("Sprite source changed", "path", event.Name, "op", event.Op.String(), "set", SetName(dir))
	b.guard.trigger(dir, func() {
		b.regenerate(ctx, dir)
	})
}

// setDirFor returns the sprite set directory (relative to SourceDir) that
// contains path. isSetDir is true when path is the set directory itself.
// Entries directly in the root that are not directories, hidden entries and
// ignored entries report ok=false.
func (b *Builder) setDirFor(path string) (dir string, isSetDir, ok bool) {
	rel, err := filepath.Rel(b.cfg.SourceDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false, false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	dir = parts[0]
	if shouldSkipEntry(dir, true, b.ignore) {
		return "", false, false
	}

	if len(parts) == 1 {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			return dir, true, true
		case err != nil && errors.Is(err, os.ErrNotExist) && filepath.Ext(dir) == "":
			// A removed or renamed set directory
			return dir, true, true
		default:
			return "", false, false
		}
	}

	// Only direct children belong to a set
	if len(parts) > 2 || shouldSkipEntry(filepath.Join(dir, parts[1]), false, b.ignore) {
		return "", false, false
	}
	return dir, false, true
}

// regenerate rebuilds one set and is the error boundary of watch mode
func (b *Builder) regenerate(ctx context.Context, dir string) {
	log := logging.WithSet(b.logger, SetName(dir))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Sprite regeneration panicked", "panic", r)
		}
	}()

	if ctx.Err() != nil {
		return
	}

	start := b.clock.Now()
	res, err := b.BuildSet(ctx, dir)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("Sprite regeneration failed", "error", err)
		}
		return
	}

	if res.Skipped {
		log.Info("Sprite set is empty, stylesheet removed")
		return
	}
	log.Info("Sprite set regenerated", "stylesheet", res.Stylesheet, "duration", b.clock.Since(start))
}

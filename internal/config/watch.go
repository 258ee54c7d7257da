package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

// Watch calls fn with the freshly loaded config each time the file at path
// is written or replaced, until ctx is done. A reload that fails is passed
// to fn as the error.
func Watch(ctx context.Context, path string, fn func(*scoring.Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// Watch the directory: atomic saves replace the file's inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					fn(Load(path))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fn(nil, fmt.Errorf("watch %s: %w", path, err))
			}
		}
	}()
	return nil
}

// Watch reloads the loader's file on change, refreshing its cache before
// calling fn.
func (l *Loader) Watch(ctx context.Context, fn func(*scoring.Config, error)) error {
	return Watch(ctx, l.path, func(cfg *scoring.Config, err error) {
		l.Invalidate()
		if err == nil {
			l.mu.Lock()
			l.cfg = cfg
			l.mu.Unlock()
		}
		fn(cfg, err)
	})
}

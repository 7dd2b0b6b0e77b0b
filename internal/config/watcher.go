package config

import (
	"context"
	"path/filepath"
	"time"

	"sarraf/internal/logger"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// Watch re-reads the config file whenever it changes on disk and calls
// onReload with the fresh config. Only runtime-safe settings (log level)
// should be applied from it; structural changes need a restart.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files instead of writing in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		target := filepath.Clean(path)
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
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					cfg, err := Load(path)
					if err != nil {
						logger.Warnf("config reload skipped: %v", err)
						return
					}
					logger.Infof("config file changed, applying runtime settings")
					onReload(cfg)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("config watcher error: %v", err)
			}
		}
	}()
	return nil
}

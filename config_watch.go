package gltfview

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig reloads path whenever it is written and sends the result on
// the returned channel. Only the newest config is kept if the reader falls
// behind. Files that fail to load are logged and skipped. The channel is
// closed when ctx is done.
func WatchConfig(ctx context.Context, path string, logger Logger) (<-chan Config, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	// Editors often replace the file, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan Config, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs || !(e.Op.Has(fsnotify.Write) || e.Op.Has(fsnotify.Create)) {
					continue
				}
				cfg, err := LoadConfig(abs)
				if err != nil {
					logger.Warnf("config reload: %v", err)
					continue
				}
				logger.Infof("reloaded %s", path)
				// drop a stale pending config
				select {
				case <-out:
				default:
				}
				out <- cfg
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Errorf("config watcher: %v", err)
			}
		}
	}()
	return out, nil
}

package artifacts

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reports changes to artifact files under dir until ctx is done.
// Tables are never reloaded: a change only means the running process is
// serving a stale snapshot and needs a restart. notify may be nil.
func Watch(ctx context.Context, dir string, logger *zap.Logger, notify func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	known := make(map[string]bool, len(Names()))
	for _, name := range Names() {
		known[name] = true
	}

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
				name := filepath.Base(event.Name)
				if !known[name] || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				logger.Warn("artifact changed on disk, restart to serve it",
					zap.String("file", name),
					zap.String("op", event.Op.String()))
				if notify != nil {
					notify(name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("artifact watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

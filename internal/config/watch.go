package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/buildsock/buildsock/internal/logger"
)

// Watcher invokes a callback whenever the settings file is rewritten,
// mirroring the editor-side settings change subscription.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
	stop     chan struct{}
	done     chan struct{}
}

// Watch starts watching the settings file at path. The callback runs on the
// watcher goroutine; callers are expected to hand the work off to their own
// execution context.
func Watch(path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the containing directory: editors replace files on save, and a
	// watch on the file itself is lost when the inode goes away.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		path:     filepath.Clean(path),
		onChange: onChange,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Debug("Settings file changed (%s), reloading", event.Op)
				w.onChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Settings watcher error: %v", err)
		}
	}
}

// Close stops watching and waits for the watcher goroutine to exit
func (w *Watcher) Close() error {
	close(w.stop)
	err := w.watcher.Close()
	<-w.done
	return err
}

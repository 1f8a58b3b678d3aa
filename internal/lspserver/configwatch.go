package lspserver

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// configWatcher is a fallback for clients that do not honor dynamic
// registration of workspace/didChangeWatchedFiles: it watches a single
// jvl.json path directly via fsnotify and debounces bursts of writes
// (many editors save via a temp-file-then-rename sequence, which fsnotify
// reports as several distinct events) into a single reload signal.
type configWatcher struct {
	logger *slog.Logger

	closed chan struct{}
	wg     sync.WaitGroup

	watcher *fsnotify.Watcher
	path    string
}

// newConfigWatcher starts watching the directory containing path (fsnotify
// cannot watch a single not-yet-existing file directly) and starts its
// debounced event loop. changed fires, debounced by delay, whenever path
// itself is created, written, or renamed into place.
func newConfigWatcher(path string, delay time.Duration, logger *slog.Logger) (*configWatcher, <-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	w := &configWatcher{
		logger:  logger,
		watcher: watcher,
		path:    filepath.Clean(path),
		closed:  make(chan struct{}),
	}

	changed := make(chan struct{})
	w.wg.Add(1)
	go w.run(changed, delay)

	return w, changed, nil
}

func (w *configWatcher) run(changed chan<- struct{}, delay time.Duration) {
	defer w.wg.Done()

	timer := time.NewTimer(delay)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-w.closed:
			close(changed)
			return

		case <-timer.C:
			if pending {
				pending = false
				select {
				case changed <- struct{}{}:
				case <-w.closed:
					close(changed)
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				continue
			}
			if w.logger != nil {
				w.logger.Warn("config watcher error", "err", err)
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			pending = true
			timer.Reset(delay)
		}
	}
}

func (w *configWatcher) Close() error {
	err := w.watcher.Close()
	close(w.closed)
	w.wg.Wait()
	return err
}

package tavern

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher watches the pipeline TOML file and delivers reparsed configs
// over Updates. Editors save with rename-and-replace as often as with a plain
// write, so the parent directory is watched and events filtered by name.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan PipelineConfig
	done    chan struct{}
	closed  sync.Once
	logger  Logger
}

func NewConfigWatcher(path string, logger Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &ConfigWatcher{
		path:    abs,
		watcher: watcher,
		updates: make(chan PipelineConfig, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go w.loop()
	logger.Infof("watching %s for live tuning changes", abs)
	return w, nil
}

// Updates delivers at most the latest reparsed config; stale intermediate
// saves are dropped. The channel is closed by Close.
func (w *ConfigWatcher) Updates() <-chan PipelineConfig { return w.updates }

func (w *ConfigWatcher) loop() {
	defer close(w.updates)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadConfig(w.path)
			if err != nil {
				// A half-written file parses as garbage; keep the old
				// config and wait for the next save.
				w.logger.Warnf("config reload skipped: %v", err)
				continue
			}
			select {
			case w.updates <- cfg:
			default:
				select {
				case <-w.updates:
				default:
				}
				w.updates <- cfg
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("config watcher: %v", err)
		}
	}
}

// Close stops the watch loop and releases the fsnotify watcher. Safe to
// call more than once.
func (w *ConfigWatcher) Close() error {
	var err error
	w.closed.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

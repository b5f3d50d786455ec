package config

import (
	"path/filepath"
	"sync"

	"github.com/achilleasa/orrery/log"
	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

var logger = log.New("config")

// A Watcher reloads a config file whenever it changes on disk and delivers
// the decoded settings on its Updates channel. Only the most recent update
// is kept if the consumer falls behind.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	updates chan *Settings
	errs    chan error
	done    chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Watch a local config file. The parent directory is watched so that
// editors replacing the file atomically are also picked up.
func Watch(path string) (*Watcher, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: could not expand '%s'", path)
	}
	expanded, err = filepath.Abs(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "config: could not resolve '%s'", path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "config: could not create file watcher")
	}
	if err = fsw.Add(filepath.Dir(expanded)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "config: could not watch '%s'", expanded)
	}

	w := &Watcher{
		path:    expanded,
		fsw:     fsw,
		updates: make(chan *Settings, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Reloaded settings.
func (w *Watcher) Updates() <-chan *Settings {
	return w.updates
}

// Reload and watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// The absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Stop watching. It is safe to call Close more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.sendErr(errors.Wrap(err, "config: watch failed"))
		}
	}
}

func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		// Editors often truncate before writing; a later event will
		// deliver the complete file.
		logger.Debugf("ignoring unreadable config update: %v", err)
		w.sendErr(err)
		return
	}
	logger.Infof("reloaded settings from %s", w.path)

	// Replace any update the consumer has not picked up yet.
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- s:
	case <-w.done:
	}
}

func (w *Watcher) sendErr(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

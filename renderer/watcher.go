package renderer

// A Watcher is notified after every configuration change. It receives a
// private copy of the configuration.
type Watcher interface {
	NotifyRenderSettingsChanged(cfg *Config)
}

// FuncWatcher adapts a function to the Watcher interface.
type FuncWatcher struct {
	fn func(cfg *Config)
}

// Wrap fn as a Watcher. The returned pointer identifies the watcher for
// RemoveWatcher.
func NewFuncWatcher(fn func(cfg *Config)) *FuncWatcher {
	return &FuncWatcher{fn: fn}
}

func (w *FuncWatcher) NotifyRenderSettingsChanged(cfg *Config) {
	w.fn(cfg)
}

// Register a watcher.
func (r *Renderer) AddWatcher(w Watcher) {
	r.watchers = append(r.watchers, w)
}

// Unregister a watcher. Unknown watchers are ignored.
func (r *Renderer) RemoveWatcher(w Watcher) {
	for i, cur := range r.watchers {
		if cur == w {
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			return
		}
	}
}

// SettingsHaveChanged reports whether the configuration changed since the
// flag was last cleared.
func (r *Renderer) SettingsHaveChanged() bool {
	return r.settingsChanged
}

// Set or clear the settings changed flag.
func (r *Renderer) MarkSettingsChanged(changed bool) {
	r.settingsChanged = changed
}

func (r *Renderer) notifyWatchers() {
	r.settingsChanged = true
	for _, w := range r.watchers {
		w.NotifyRenderSettingsChanged(r.config.Clone())
	}
}

package config

import (
	"github.com/fsnotify/fsnotify"

	"bite/internal/system"
)

// Watch watches the config file for changes and pushes freshly reloaded
// Configs to the returned channel. The caller owns the returned watcher's
// lifetime and must call Close when done.
func Watch() (<-chan Config, *fsnotify.Watcher, error) {
	path, err := FilePath()
	if err != nil {
		return nil, nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(path); err != nil {
		// The file may not exist yet; watch its directory instead so a
		// later create/rename is still observed.
		dir, dirErr := Dir()
		if dirErr == nil {
			_ = w.Add(dir)
		}
	}

	out := make(chan Config, 1)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(out)
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load()
				if err != nil {
					system.Logger.Warn("config reload failed", "err", err)
					continue
				}
				select {
				case out <- cfg:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				system.Logger.Warn("config watch error", "err", err)
			}
		}
	}()
	return out, w, nil
}

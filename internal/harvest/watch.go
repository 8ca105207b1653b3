package harvest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchStaging wakes the harvest loop when the staging tree changes, so
// fresh records don't wait out a full interval. Events are debounced; the
// periodic sweep still runs regardless, so a lost event costs nothing.
func (h *Harvester) watchStaging(ctx context.Context, wake chan<- struct{}) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		h.log.Warn().Err(err).Msg("staging watch unavailable, falling back to interval only")
		return
	}
	defer w.Close()

	h.addWatches(w)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// Workers create ruleset/outcome directories lazily; watch
			// them as they appear.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						h.log.Debug().Err(err).Str("dir", ev.Name).Msg("watch add failed")
					}
				}
			}
			debounce = time.After(h.cfg.WatchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.log.Debug().Err(err).Msg("staging watch error")
		case <-debounce:
			debounce = nil
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

// addWatches registers the staging root and every directory under it.
func (h *Harvester) addWatches(w *fsnotify.Watcher) {
	err := filepath.WalkDir(h.cfg.StagingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if addErr := w.Add(path); addErr != nil {
			h.log.Debug().Err(addErr).Str("dir", path).Msg("watch add failed")
		}
		return nil
	})
	if err != nil {
		h.log.Debug().Err(err).Msg("watch walk failed")
	}
}

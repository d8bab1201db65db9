package codebase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileWatcher polls the root directory and keeps the codebase in step with
// the files on disk. OnChange, when set, is called after a file was
// rescanned or removed.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time

	OnChange func(path string, removed bool)
}

func NewFileWatcher(c *Codebase, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
	}
}

func (w *FileWatcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

func (w *FileWatcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.scan(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *FileWatcher) scan(ctx context.Context) {
	currentFiles := make(map[string]bool)

	filepath.WalkDir(w.codebase.RootDir(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.codebase.RootDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.codebase.Match(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		currentFiles[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			if err := w.codebase.ScanFile(ctx, path); err != nil {
				log.Warningf("watch %s: %s", path, err)
				return nil
			}
			w.notify(path, false)
		}
		return nil
	})

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			w.notify(path, true)
		}
	}
}

func (w *FileWatcher) notify(path string, removed bool) {
	if w.OnChange != nil {
		w.OnChange(path, removed)
	}
}

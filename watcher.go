package main

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pipe01/lexkit/internal/workspace"
)

type Watcher struct {
	mu sync.Mutex

	watchingDirs map[string]struct{}
	// watched file -> files given on the command line that depend on it
	watchingFiles map[string]map[string]struct{}

	watcher *fsnotify.Watcher
}

func NewWatcher() (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watchingDirs:  make(map[string]struct{}),
		watchingFiles: make(map[string]map[string]struct{}),
		watcher:       watcher,
	}
	go w.eventLoop()

	return w, nil
}

// WatchFile reprocesses root whenever path is written.
func (w *Watcher) WatchFile(path, root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	fullPath, _ := filepath.Abs(path)

	roots, ok := w.watchingFiles[fullPath]
	if !ok {
		roots = make(map[string]struct{})
		w.watchingFiles[fullPath] = roots
	}
	roots[root] = struct{}{}

	dir := filepath.Dir(fullPath)
	if _, ok := w.watchingDirs[dir]; ok {
		return nil
	}

	err := w.watcher.Add(dir)
	if err != nil {
		return err
	}

	w.watchingDirs[dir] = struct{}{}

	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) {
				continue
			}

			fname, _ := filepath.Abs(event.Name)

			for _, root := range w.rootsOf(fname) {
				w.fileModified(root)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher error: %s", err)
		}
	}
}

func (w *Watcher) rootsOf(fullPath string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	roots := make([]string, 0, len(w.watchingFiles[fullPath]))
	for root := range w.watchingFiles[fullPath] {
		roots = append(roots, root)
	}

	return roots
}

func (w *Watcher) fileModified(root string) {
	log.Infof("processing %q", root)

	ws := workspace.New(rootDir)

	out, err := processFile(ws, root)
	if err != nil {
		log.Errorf("failed to process file %q: %s", root, err)
	} else {
		fmt.Print(out)
	}

	for _, req := range ws.RequestedFiles() {
		if err := w.WatchFile(req, root); err != nil {
			log.Errorf("failed to watch %q: %s", req, err)
		}
	}
}

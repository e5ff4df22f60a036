// This file implements a file system watcher that keeps the catalog current.
// Archive changes under the library root are debounced into a catalog-scan job.

package library

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vrsandeep/mango-catalog/internal/jobs"
)

const defaultDebounceDelay = 2 * time.Second

// WatcherService watches the library directory and triggers a catalog scan
// after archives are added, modified or deleted.
type WatcherService struct {
	ctx           jobs.JobContext
	watcher       *fsnotify.Watcher
	pending       map[string]bool
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewWatcherService creates a new file system watcher service.
func NewWatcherService(ctx jobs.JobContext) *WatcherService {
	return &WatcherService{
		ctx:           ctx,
		pending:       make(map[string]bool),
		debounceDelay: defaultDebounceDelay,
		stopChan:      make(chan struct{}),
	}
}

// SetDebounceDelay changes how long the watcher waits after the last change.
func (w *WatcherService) SetDebounceDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = d
}

// Start begins watching the library directory for changes.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	libraryPath := w.ctx.Config().Library.Path
	if err := w.addTree(libraryPath); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("File watcher started for library: %s", libraryPath)
	go w.processEvents()
	return nil
}

// Stop stops the file watcher service. It is safe to call more than once.
func (w *WatcherService) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()
		if w.watcher != nil {
			err = w.watcher.Close()
		}
	})
	return err
}

// addTree watches root and every directory below it. fsnotify is not
// recursive, so each directory needs its own watch. A symlinked root is
// watched through its target.
func (w *WatcherService) addTree(root string) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	root = resolved
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("File watcher: skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *WatcherService) handleEvent(event fsnotify.Event) {
	// Chmod fires on plain reads in some file managers.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	info, err := os.Stat(event.Name)
	isDir := err == nil && info.IsDir()

	if isDir {
		if event.Has(fsnotify.Create) {
			// Archives may already be inside a directory that was moved in.
			if err := w.addTree(event.Name); err != nil {
				log.Printf("File watcher: failed to watch %s: %v", event.Name, err)
			}
			w.markChanged(event.Name)
		}
		return
	}

	if IsSupportedArchive(filepath.Base(event.Name)) {
		w.markChanged(event.Name)
	}
}

func (w *WatcherService) markChanged(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	w.resetTimerLocked()
}

func (w *WatcherService) resetTimerLocked() {
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerScan)
}

func (w *WatcherService) triggerScan() {
	select {
	case <-w.stopChan:
		return
	default:
	}

	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	count := len(w.pending)

	jm := w.ctx.JobManager()
	if jm == nil {
		w.pending = make(map[string]bool)
		w.mu.Unlock()
		return
	}
	if err := jm.RunJob(jobs.CatalogScanJobID, w.ctx); err != nil {
		// Another job holds the manager; try again once it is likely done.
		log.Printf("File watcher: deferring catalog scan: %v", err)
		w.resetTimerLocked()
		w.mu.Unlock()
		return
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	log.Printf("File watcher detected %d changed path(s), started catalog scan", count)
}

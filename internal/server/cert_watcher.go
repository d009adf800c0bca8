package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"folio/internal/errors"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceDelay = time.Second

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

// CertWatcher calls onChange after the certificate or key file changes and
// no further events arrive for the debounce delay. Parent directories are
// watched so that atomic renames by cert tooling are seen.
type CertWatcher struct {
	files    []string
	debounce time.Duration
	onChange func()
	logger   *errors.Logger

	mu      sync.Mutex
	fs      *fsnotify.Watcher
	stamps  map[string]fileStamp
	done    chan struct{}
	stopped chan struct{}
}

// NewCertWatcher creates a watcher for the given files; empty paths are ignored
func NewCertWatcher(files []string, debounce time.Duration, onChange func(), logger *errors.Logger) *CertWatcher {
	if debounce <= 0 {
		debounce = defaultDebounceDelay
	}
	var watched []string
	for _, f := range files {
		if f != "" {
			watched = append(watched, filepath.Clean(f))
		}
	}
	return &CertWatcher{
		files:    watched,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		stamps:   make(map[string]fileStamp),
	}
}

// Start begins watching in a background goroutine
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.fs != nil {
		return fmt.Errorf("certificate watcher is already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	for _, file := range cw.files {
		stamp, err := stampOf(file)
		if err != nil && !os.IsNotExist(err) {
			_ = fsw.Close()
			return fmt.Errorf("failed to stat %s: %w", file, err)
		}
		if err == nil {
			cw.stamps[file] = stamp
		}
	}
	for _, dir := range cw.dirs() {
		if err := fsw.Add(dir); err != nil {
			cw.logger.Warn("Failed to watch certificate directory", "directory", dir, "error", err)
		}
	}

	cw.fs = fsw
	cw.done = make(chan struct{})
	cw.stopped = make(chan struct{})
	go cw.run(fsw, cw.done, cw.stopped)

	cw.logger.Info("Certificate file watcher started", "files", cw.files, "debounce_delay", cw.debounce)
	return nil
}

// Stop ends the watch loop and waits for it to exit; calling it twice is harmless
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	fsw, done, stopped := cw.fs, cw.done, cw.stopped
	cw.fs = nil
	cw.mu.Unlock()

	if fsw == nil {
		return nil
	}
	close(done)
	<-stopped

	if err := fsw.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	cw.logger.Info("Certificate file watcher stopped")
	return nil
}

// Files returns the watched file paths
func (cw *CertWatcher) Files() []string {
	return slices.Clone(cw.files)
}

func (cw *CertWatcher) dirs() []string {
	var dirs []string
	for _, file := range cw.files {
		if dir := filepath.Dir(file); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (cw *CertWatcher) run(fsw *fsnotify.Watcher, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	timer := time.NewTimer(cw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if cw.watches(event) {
				timer.Reset(cw.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "File watcher error")

		case <-timer.C:
			if cw.refreshStamps() {
				cw.logger.Info("Certificate files changed, triggering reload")
				cw.onChange()
			}

		case <-done:
			return
		}
	}
}

// watches reports whether event writes, creates or renames one of the files
func (cw *CertWatcher) watches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return slices.ContainsFunc(cw.files, func(file string) bool {
		return file == name || filepath.Base(file) == filepath.Base(name)
	})
}

// refreshStamps re-reads every file and reports whether any differs from the
// last stamp. A file that disappeared counts as changed.
func (cw *CertWatcher) refreshStamps() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	changed := false
	for _, file := range cw.files {
		prev, seen := cw.stamps[file]
		stamp, err := stampOf(file)
		switch {
		case err != nil:
			if seen && os.IsNotExist(err) {
				delete(cw.stamps, file)
				changed = true
			}
		case !seen || stamp.size != prev.size || !stamp.modTime.Equal(prev.modTime):
			cw.stamps[file] = stamp
			changed = true
		}
	}
	return changed
}

func stampOf(file string) (fileStamp, error) {
	info, err := os.Stat(file)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

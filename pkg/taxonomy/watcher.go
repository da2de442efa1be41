package taxonomy

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"gopkg.in/fsnotify.v1"
)

// Source supplies the taxonomy to use for the next parse.
type Source interface {
	Current() *Taxonomy
}

// Static is a Source that always returns the same taxonomy.
type Static struct {
	taxonomy *Taxonomy
}

// NewStatic wraps a taxonomy. A nil taxonomy means the built-in one.
func NewStatic(taxonomy *Taxonomy) *Static {
	if taxonomy == nil {
		taxonomy = Default()
	}
	return &Static{taxonomy: taxonomy}
}

// Current returns the wrapped taxonomy.
func (static *Static) Current() *Taxonomy { return static.taxonomy }

// Watcher keeps a taxonomy override file loaded and reloads it when the
// file changes. A failed reload keeps the previous taxonomy.
type Watcher struct {
	path     string
	current  atomic.Pointer[Taxonomy]
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	onChange func(taxonomy *Taxonomy, err error)
}

// NewWatcher loads path and returns a watcher serving it. Call Watch to
// start following changes.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	taxonomy, err := LoadFile(absolutePath)
	if err != nil {
		return nil, err
	}

	taxonomyWatcher := &Watcher{
		path:   absolutePath,
		logger: logger,
	}
	taxonomyWatcher.current.Store(taxonomy)
	return taxonomyWatcher, nil
}

// Current returns the most recently loaded taxonomy.
func (taxonomyWatcher *Watcher) Current() *Taxonomy {
	return taxonomyWatcher.current.Load()
}

// SetOnChange registers a callback invoked after every reload attempt. It
// may be called while the watcher is running.
func (taxonomyWatcher *Watcher) SetOnChange(fn func(taxonomy *Taxonomy, err error)) {
	taxonomyWatcher.mu.Lock()
	defer taxonomyWatcher.mu.Unlock()
	taxonomyWatcher.onChange = fn
}

func (taxonomyWatcher *Watcher) notify(taxonomy *Taxonomy, err error) {
	taxonomyWatcher.mu.RLock()
	onChange := taxonomyWatcher.onChange
	taxonomyWatcher.mu.RUnlock()
	if onChange != nil {
		onChange(taxonomy, err)
	}
}

// Reload re-reads the override file.
func (taxonomyWatcher *Watcher) Reload() error {
	taxonomy, err := LoadFile(taxonomyWatcher.path)
	if err != nil {
		taxonomyWatcher.logger.Warn("taxonomy reload failed, keeping previous tables",
			"path", taxonomyWatcher.path,
			"error", err,
		)
		taxonomyWatcher.notify(nil, err)
		return err
	}

	taxonomyWatcher.current.Store(taxonomy)
	taxonomyWatcher.logger.Info("taxonomy reloaded",
		"path", taxonomyWatcher.path,
		"name", taxonomy.Name,
		"ownership_terms", taxonomy.Ownership.Len(),
		"encumbrance_terms", taxonomy.Encumbrance.Len(),
	)
	taxonomyWatcher.notify(taxonomy, nil)
	return nil
}

// Watch starts following the override file. The parent directory is
// watched so editors that replace the file by rename are handled.
func (taxonomyWatcher *Watcher) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	taxonomyWatcher.watcher = watcher
	taxonomyWatcher.stopChan = make(chan struct{})

	go taxonomyWatcher.watchLoop()

	if err := watcher.Add(filepath.Dir(taxonomyWatcher.path)); err != nil {
		taxonomyWatcher.Stop()
		return fmt.Errorf("watching directory %s: %w", filepath.Dir(taxonomyWatcher.path), err)
	}
	return nil
}

func (taxonomyWatcher *Watcher) watchLoop() {
	for {
		select {
		case <-taxonomyWatcher.stopChan:
			return

		case event, ok := <-taxonomyWatcher.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != taxonomyWatcher.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				_ = taxonomyWatcher.Reload()
			}

		case err, ok := <-taxonomyWatcher.watcher.Errors:
			if !ok {
				return
			}
			taxonomyWatcher.logger.Warn("taxonomy watcher error", "error", err)
		}
	}
}

// Stop ends watching. It is safe to call more than once.
func (taxonomyWatcher *Watcher) Stop() {
	taxonomyWatcher.stopOnce.Do(func() {
		if taxonomyWatcher.stopChan != nil {
			close(taxonomyWatcher.stopChan)
		}
		if taxonomyWatcher.watcher != nil {
			taxonomyWatcher.watcher.Close()
		}
	})
}

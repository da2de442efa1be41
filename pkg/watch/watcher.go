// Package watch analyzes registry documents as they appear in a directory
// and writes one JSON report per document.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/fsnotify.v1"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/metrics"
	"github.com/coolbeans/deungi/pkg/report"
)

const (
	// DefaultPattern selects plain-text registry documents.
	DefaultPattern = "*.txt"

	// DefaultDebounce is how long a file must stay quiet before analysis.
	DefaultDebounce = 500 * time.Millisecond

	// ReportSuffix replaces the document extension in report file names.
	ReportSuffix = ".report.json"
)

// Outcomes recorded in the watch metrics.
const (
	outcomeWritten = "written"
	outcomeFailed  = "failed"
)

// Analyzer analyzes one document.
type Analyzer interface {
	Analyze(ctx context.Context, request analysis.Request) (*analysis.Report, error)
}

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch. Subdirectories are ignored.
	Dir string

	// ReportDir receives reports. Empty writes reports next to documents.
	ReportDir string

	// Pattern is a filepath.Match glob applied to file names.
	Pattern string

	// StateFile persists processed-file state. Empty keeps state in memory.
	StateFile string

	// Debounce is the quiet period after the last change to a file.
	Debounce time.Duration

	// EstimatedPrice is passed to every analysis.
	EstimatedPrice int64
}

// Result describes one processed document.
type Result struct {
	Path       string `json:"path"`
	ReportPath string `json:"report_path"`
	ReportID   string `json:"report_id"`
	Grade      string `json:"grade"`
	Valid      bool   `json:"valid"`
}

// Watcher analyzes new and changed documents in a directory. Unchanged
// content is never analyzed twice, including across restarts when a state
// file is configured.
type Watcher struct {
	config   Config
	analyzer Analyzer
	logger   *slog.Logger
	metrics  *metrics.Metrics

	state   *State
	stateMu sync.Mutex

	pendingChanges map[string]time.Time
	pendingMu      sync.Mutex

	onReport func(Result)
}

// New creates a Watcher and loads its state file when configured.
func New(config Config, analyzer Analyzer, logger *slog.Logger, m *metrics.Metrics) (*Watcher, error) {
	if config.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if _, err := filepath.Match(config.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", config.Pattern, err)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	state := NewState()
	if config.StateFile != "" {
		loaded, err := LoadState(config.StateFile)
		if err != nil {
			return nil, err
		}
		state = loaded
	}

	return &Watcher{
		config:         config,
		analyzer:       analyzer,
		logger:         logger,
		metrics:        m,
		state:          state,
		pendingChanges: make(map[string]time.Time),
	}, nil
}

// SetOnReport sets a callback invoked after each report is written.
func (watcher *Watcher) SetOnReport(callback func(Result)) {
	watcher.onReport = callback
}

// State returns a copy of the processed-file state.
func (watcher *Watcher) State() State {
	watcher.stateMu.Lock()
	defer watcher.stateMu.Unlock()

	stateCopy := State{
		ProcessedFiles: make(map[string]FileState, len(watcher.state.ProcessedFiles)),
		LastCheck:      watcher.state.LastCheck,
		Version:        watcher.state.Version,
	}
	for path, fileState := range watcher.state.ProcessedFiles {
		stateCopy.ProcessedFiles[path] = fileState
	}
	return stateCopy
}

// ReportPath returns where the report for a document is written.
func (watcher *Watcher) ReportPath(documentPath string) string {
	name := strings.TrimSuffix(filepath.Base(documentPath), filepath.Ext(documentPath)) + ReportSuffix
	if watcher.config.ReportDir != "" {
		return filepath.Join(watcher.config.ReportDir, name)
	}
	return filepath.Join(filepath.Dir(documentPath), name)
}

// matches reports whether path names a document this watcher handles.
func (watcher *Watcher) matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ReportSuffix) || strings.HasSuffix(name, ".tmp") {
		return false
	}
	if watcher.config.StateFile != "" && filepath.Clean(path) == filepath.Clean(watcher.config.StateFile) {
		return false
	}
	matched, _ := filepath.Match(watcher.config.Pattern, name)
	return matched
}

// Scan analyzes every matching document that is new or changed since it
// was last processed. Documents that fail are logged and skipped.
func (watcher *Watcher) Scan(ctx context.Context) ([]Result, error) {
	if watcher.config.ReportDir != "" {
		if err := os.MkdirAll(watcher.config.ReportDir, 0755); err != nil {
			return nil, fmt.Errorf("creating report directory: %w", err)
		}
	}

	dirEntries, err := os.ReadDir(watcher.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", watcher.config.Dir, err)
	}

	var paths []string
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		path := filepath.Join(watcher.config.Dir, dirEntry.Name())
		if watcher.matches(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	var results []Result
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, processed, err := watcher.process(ctx, path)
		if err != nil {
			watcher.logger.WarnContext(ctx, "document analysis failed", "path", path, "error", err)
			continue
		}
		if processed {
			results = append(results, result)
		}
	}

	watcher.stateMu.Lock()
	watcher.state.LastCheck = time.Now()
	watcher.stateMu.Unlock()

	if err := watcher.saveState(); err != nil {
		return results, err
	}
	return results, nil
}

// Run scans the directory once, then follows file system events until ctx
// is done. State is saved before returning.
func (watcher *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(watcher.config.Dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", watcher.config.Dir, err)
	}

	if _, err := watcher.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	watcher.logger.InfoContext(ctx, "watching directory",
		"dir", watcher.config.Dir,
		"pattern", watcher.config.Pattern,
		"debounce", watcher.config.Debounce,
	)

	ticker := time.NewTicker(watcher.config.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return watcher.saveState()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return watcher.saveState()
			}
			watcher.handleEvent(event)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return watcher.saveState()
			}
			watcher.logger.WarnContext(ctx, "directory watcher error", "error", err)

		case <-ticker.C:
			watcher.flushPending(ctx)
		}
	}
}

func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	if !watcher.matches(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create, event.Op&fsnotify.Write == fsnotify.Write:
		watcher.notifyChange(event.Name)

	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		watcher.forget(event.Name)
	}
}

// notifyChange records a change; analysis waits for the debounce window.
func (watcher *Watcher) notifyChange(path string) {
	watcher.pendingMu.Lock()
	watcher.pendingChanges[path] = time.Now()
	watcher.pendingMu.Unlock()
}

func (watcher *Watcher) forget(path string) {
	watcher.pendingMu.Lock()
	delete(watcher.pendingChanges, path)
	watcher.pendingMu.Unlock()

	watcher.stateMu.Lock()
	delete(watcher.state.ProcessedFiles, path)
	watcher.stateMu.Unlock()
}

// flushPending analyzes files whose last change is older than the debounce
// window.
func (watcher *Watcher) flushPending(ctx context.Context) {
	threshold := time.Now().Add(-watcher.config.Debounce)

	var ready []string
	watcher.pendingMu.Lock()
	for path, changeTime := range watcher.pendingChanges {
		if changeTime.After(threshold) {
			continue
		}
		ready = append(ready, path)
		delete(watcher.pendingChanges, path)
	}
	watcher.pendingMu.Unlock()

	if len(ready) == 0 {
		return
	}
	sort.Strings(ready)

	for _, path := range ready {
		if _, _, err := watcher.process(ctx, path); err != nil && !errors.Is(err, os.ErrNotExist) {
			watcher.logger.WarnContext(ctx, "document analysis failed", "path", path, "error", err)
		}
	}
	if err := watcher.saveState(); err != nil {
		watcher.logger.WarnContext(ctx, "saving watch state failed", "error", err)
	}
}

// process analyzes one document unless its content is unchanged. The
// boolean reports whether a report was written.
func (watcher *Watcher) process(ctx context.Context, path string) (Result, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, false, fmt.Errorf("stat: %w", err)
	}

	watcher.stateMu.Lock()
	quick := watcher.state.unchanged(path, info, "")
	watcher.stateMu.Unlock()
	if quick {
		return Result{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, false, fmt.Errorf("read: %w", err)
	}
	hash := hashContent(data)

	watcher.stateMu.Lock()
	sameContent := watcher.state.unchanged(path, info, hash)
	if sameContent {
		fileState := watcher.state.ProcessedFiles[path]
		fileState.ModTime = info.ModTime()
		fileState.Size = info.Size()
		watcher.state.ProcessedFiles[path] = fileState
	}
	watcher.stateMu.Unlock()
	if sameContent {
		return Result{}, false, nil
	}

	analysisReport, err := watcher.analyzer.Analyze(ctx, analysis.Request{
		Source:         filepath.Base(path),
		Text:           string(data),
		EstimatedPrice: watcher.config.EstimatedPrice,
	})
	if err != nil {
		watcher.metrics.IncrementWatchReport(outcomeFailed)
		return Result{}, false, fmt.Errorf("analyze: %w", err)
	}

	reportPath := watcher.ReportPath(path)
	encoded, err := report.Encode(analysisReport, report.FormatJSON)
	if err == nil {
		err = writeFileAtomic(reportPath, encoded)
	}
	if err != nil {
		watcher.metrics.IncrementWatchReport(outcomeFailed)
		return Result{}, false, fmt.Errorf("writing report: %w", err)
	}
	watcher.metrics.IncrementWatchReport(outcomeWritten)

	watcher.stateMu.Lock()
	watcher.state.ProcessedFiles[path] = FileState{
		Path:        path,
		ModTime:     info.ModTime(),
		Hash:        hash,
		Size:        info.Size(),
		ProcessedAt: time.Now(),
		ReportID:    analysisReport.ID,
		ReportPath:  reportPath,
	}
	watcher.stateMu.Unlock()

	result := Result{
		Path:       path,
		ReportPath: reportPath,
		ReportID:   analysisReport.ID,
		Grade:      string(analysisReport.Risk.Grade),
		Valid:      analysisReport.Validation.IsValid,
	}
	watcher.logger.InfoContext(ctx, "report written",
		"path", path,
		"report", reportPath,
		"report_id", result.ReportID,
		"grade", result.Grade,
		"valid", result.Valid,
	)
	if watcher.onReport != nil {
		watcher.onReport(result)
	}
	return result, true, nil
}

func (watcher *Watcher) saveState() error {
	if watcher.config.StateFile == "" {
		return nil
	}
	watcher.stateMu.Lock()
	defer watcher.stateMu.Unlock()
	if err := watcher.state.Save(watcher.config.StateFile); err != nil {
		return fmt.Errorf("saving watch state: %w", err)
	}
	return nil
}

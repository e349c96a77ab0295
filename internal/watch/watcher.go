// Package watch keeps a store.Store current with a set of watched
// directories, grounded on the teacher's internal/index/watcher.go:
// the same fsnotify recursive-registration, debounce-timer batching,
// and create/write/remove/rename classification survive unchanged;
// only the batch-processing unit of work changes, from the teacher's
// Builder.BuildIndex call to a direct Parse + store.Store.IndexFile
// per file, resolved through a lang.LanguageRegistry by extension.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
	"github.com/codanna/codanna/internal/store"
)

// WatcherConfig controls debounce timing, path filtering, and
// reporting, matching the teacher's WatcherConfig fields.
type WatcherConfig struct {
	WatchDirs       []string
	DebounceDelay   time.Duration
	ExcludePatterns []string
	IncludePatterns []string
	Recursive       bool
	Verbose         bool
	ErrorCallback   func(error)
	Settings        lang.Settings
}

// DefaultWatcherConfig returns sensible defaults: half-second debounce,
// recursive, and the same common VCS/build-artifact exclusions the
// teacher hardcodes in shouldExcludeDirectory.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		DebounceDelay: 500 * time.Millisecond,
		Recursive:     true,
		ExcludePatterns: []string{
			".git", "node_modules", "vendor", "target",
		},
	}
}

// WatchEvent is one normalized filesystem change.
type WatchEvent struct {
	Path      string
	Operation string // create, write, remove, rename
	Time      time.Time
}

// EventBatch groups events collected within one debounce window.
type EventBatch struct {
	Events    []WatchEvent
	StartTime time.Time
	EndTime   time.Time
}

// Watcher re-runs Parse and Store.IndexFile on file change, resolving
// each changed path's language through registry by extension.
type Watcher struct {
	store    *store.Store
	registry *lang.LanguageRegistry
	sink     diag.Sink
	config   WatcherConfig

	fsWatcher *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewWatcher creates a Watcher over store, resolving languages through
// registry. sink receives parse diagnostics for changed files; nil
// discards them.
func NewWatcher(st *store.Store, registry *lang.LanguageRegistry, sink diag.Sink, config WatcherConfig) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("watch: store is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("watch: registry is required")
	}
	if sink == nil {
		sink = diag.Discard{}
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultWatcherConfig().DebounceDelay
	}

	return &Watcher{store: st, registry: registry, sink: sink, config: config}, nil
}

// Start begins watching config.WatchDirs, registering each directory
// (and its subdirectories, if Recursive) with fsnotify, then runs the
// event-consumption and batching loops until ctx is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watch: already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w.fsWatcher = fsWatcher

	for _, dir := range w.config.WatchDirs {
		if err := w.addDirectory(dir); err != nil {
			fsWatcher.Close()
			w.mu.Unlock()
			return fmt.Errorf("watch: add directory %s: %w", dir, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	events := make(chan WatchEvent, 256)
	go w.watchFileSystem(runCtx, events)
	go w.processEvents(runCtx, events)

	return nil
}

// Stop cancels the running watch loops and closes the fsnotify handle.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.running = false
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

// IsRunning reports whether the watch loops are active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// AddDirectory registers dir (and, if Recursive, its subdirectories)
// for watching while already running.
func (w *Watcher) AddDirectory(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsWatcher == nil {
		return fmt.Errorf("watch: not started")
	}
	return w.addDirectory(dir)
}

// RemoveDirectory stops watching dir.
func (w *Watcher) RemoveDirectory(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsWatcher == nil {
		return fmt.Errorf("watch: not started")
	}
	return w.fsWatcher.Remove(dir)
}

// addDirectory registers dir and, when Recursive is set, every
// subdirectory under it that isn't excluded. Caller holds w.mu.
func (w *Watcher) addDirectory(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	if !w.config.Recursive {
		return nil
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() || path == dir {
			return nil
		}
		if w.shouldExcludeDirectory(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// watchFileSystem drains fsnotify events, normalizes them, and hands
// them to events for batching.
func (w *Watcher) watchFileSystem(ctx context.Context, events chan<- WatchEvent) {
	defer close(events)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcessFile(event.Name) {
				continue
			}
			if we, ok := w.convertEvent(event); ok {
				select {
				case events <- we:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.config.ErrorCallback != nil {
				w.config.ErrorCallback(fmt.Errorf("watch: fsnotify error: %w", err))
			}

		case <-ctx.Done():
			return
		}
	}
}

// convertEvent classifies a raw fsnotify.Event into a WatchEvent,
// additionally registering newly created directories when Recursive.
func (w *Watcher) convertEvent(event fsnotify.Event) (WatchEvent, bool) {
	now := time.Now()

	switch {
	case event.Op&fsnotify.Create != 0:
		if w.config.Recursive {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if !w.shouldExcludeDirectory(event.Name) {
					w.mu.Lock()
					_ = w.addDirectory(event.Name)
					w.mu.Unlock()
				}
				return WatchEvent{}, false
			}
		}
		return WatchEvent{Path: event.Name, Operation: "create", Time: now}, true

	case event.Op&fsnotify.Write != 0:
		return WatchEvent{Path: event.Name, Operation: "write", Time: now}, true

	case event.Op&fsnotify.Remove != 0:
		return WatchEvent{Path: event.Name, Operation: "remove", Time: now}, true

	case event.Op&fsnotify.Rename != 0:
		return WatchEvent{Path: event.Name, Operation: "rename", Time: now}, true

	default:
		return WatchEvent{}, false
	}
}

// processEvents accumulates events into batches separated by
// DebounceDelay quiet periods, processing each batch as it closes.
func (w *Watcher) processEvents(ctx context.Context, incoming <-chan WatchEvent) {
	var events []WatchEvent
	var timerChan <-chan time.Time
	var timer *time.Timer

	for {
		select {
		case event, ok := <-incoming:
			if !ok {
				if len(events) > 0 {
					w.processBatch(ctx, events)
				}
				return
			}
			events = append(events, event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.config.DebounceDelay)
			timerChan = timer.C

		case <-timerChan:
			if len(events) > 0 {
				w.processBatch(ctx, events)
				events = nil
			}
			timerChan = nil

		case <-ctx.Done():
			if len(events) > 0 {
				w.processBatch(ctx, events)
			}
			return
		}
	}
}

// processBatch re-indexes every created/written path and removes every
// removed/renamed path from store.
func (w *Watcher) processBatch(ctx context.Context, events []WatchEvent) {
	if len(events) == 0 {
		return
	}

	batch := EventBatch{
		Events:    events,
		StartTime: events[0].Time,
		EndTime:   events[len(events)-1].Time,
	}

	if w.config.Verbose {
		fmt.Printf("[watch] processing batch of %d events\n", len(events))
	}

	var writes, removes []string
	for _, event := range events {
		switch event.Operation {
		case "create", "write":
			if !contains(writes, event.Path) {
				writes = append(writes, event.Path)
			}
		case "remove", "rename":
			if !contains(removes, event.Path) {
				removes = append(removes, event.Path)
			}
		}
	}

	for _, path := range removes {
		if err := w.store.DeleteFile(ctx, path); err != nil {
			if w.config.ErrorCallback != nil {
				w.config.ErrorCallback(fmt.Errorf("watch: remove %s: %w", path, err))
			}
		}
	}

	counter := lang.NewSymbolCounter()
	for i, path := range writes {
		if err := w.reindexFile(ctx, lang.FileID(i+1), path, counter); err != nil {
			if w.config.ErrorCallback != nil {
				w.config.ErrorCallback(fmt.Errorf("watch: index %s: %w", path, err))
			}
		}
	}

	if w.config.Verbose {
		fmt.Printf("[watch] batch processed in %v\n", batch.EndTime.Sub(batch.StartTime))
	}
}

// reindexFile re-parses path with the language resolved from its
// extension and replaces its symbols in store.
func (w *Watcher) reindexFile(ctx context.Context, file lang.FileID, path string, counter *lang.SymbolCounter) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	def, ok := w.registry.ByExtension(ext)
	if !ok || !def.IsEnabled(w.config.Settings) {
		return nil
	}

	parser, err := def.CreateParser(lang.Settings{})
	if err != nil {
		return fmt.Errorf("create parser for %s: %w", path, err)
	}

	symbols := parser.Parse(content, file, counter)

	behavior := def.CreateBehavior()
	modulePath, _ := behavior.ModulePathFromFile(path, w.projectRootFor(path))
	for _, sym := range symbols {
		behavior.ConfigureSymbol(sym, modulePath)
	}

	return w.store.IndexFile(ctx, path, string(def.ID()), content, file, symbols)
}

// projectRootFor returns the longest configured watch directory that
// contains path, so ModulePathFromFile strips the same root a
// directory-wide index would have used. Falls back to path's parent
// directory when path isn't under any watched root.
func (w *Watcher) projectRootFor(path string) string {
	best := ""
	for _, dir := range w.config.WatchDirs {
		if dir == path || strings.HasPrefix(path, dir+string(os.PathSeparator)) {
			if len(dir) > len(best) {
				best = dir
			}
		}
	}
	if best != "" {
		return best
	}
	return filepath.Dir(path)
}

// shouldProcessFile applies ExcludePatterns then IncludePatterns to a
// changed file path.
func (w *Watcher) shouldProcessFile(path string) bool {
	for _, pattern := range w.config.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return false
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return false
		}
	}

	if len(w.config.IncludePatterns) == 0 {
		return true
	}
	for _, pattern := range w.config.IncludePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// shouldExcludeDirectory reports whether dir matches a common VCS or
// build-artifact name, or a configured exclude pattern.
func (w *Watcher) shouldExcludeDirectory(dir string) bool {
	name := filepath.Base(dir)

	excluded := []string{
		".git", ".svn", ".hg", ".bzr",
		"node_modules", "vendor", "target",
		".vscode", ".idea", "__pycache__",
	}
	for _, e := range excluded {
		if name == e {
			return true
		}
	}

	for _, pattern := range w.config.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, dir); matched {
			return true
		}
	}
	return false
}

// GetWatchedDirectories returns the directories currently registered
// with fsnotify.
func (w *Watcher) GetWatchedDirectories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsWatcher == nil {
		return w.config.WatchDirs
	}
	return w.fsWatcher.WatchList()
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codanna/codanna/internal/registry"
	"github.com/codanna/codanna/internal/store"
)

func newTestWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()

	opts := store.DefaultBadgerOptions("")
	opts.InMemory = true
	storage, err := store.NewBadgerStorage(opts)
	if err != nil {
		t.Fatalf("NewBadgerStorage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	st := store.New(storage, store.DefaultConfig())
	reg := registry.New(nil)

	cfg := DefaultWatcherConfig()
	cfg.WatchDirs = []string{dir}
	cfg.DebounceDelay = 50 * time.Millisecond

	w, err := NewWatcher(st, reg, nil, cfg)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	return w
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestWatcherIndexesCreatedGoFile(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "sample.go")
	content := []byte("package sample\n\nfunc Greet() string { return \"hi\" }\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		symbols, err := w.store.GetSymbolsInFile(ctx, path)
		return err == nil && len(symbols) > 0
	})

	symbols, err := w.store.GetSymbolsInFile(ctx, path)
	if err != nil {
		t.Fatalf("GetSymbolsInFile: %v", err)
	}
	for _, sym := range symbols {
		if sym.ModulePath == "" {
			t.Errorf("symbol %q has empty ModulePath, want ConfigureSymbol to have set it", sym.Name)
		}
	}
}

func TestWatcherRemovesDeletedFile(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "sample.go")
	content := []byte("package sample\n\nfunc Greet() string { return \"hi\" }\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		symbols, err := w.store.GetSymbolsInFile(ctx, path)
		return err == nil && len(symbols) > 0
	})

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		symbols, err := w.store.GetSymbolsInFile(ctx, path)
		return err == nil && len(symbols) == 0
	})
}

func TestShouldExcludeDirectoryMatchesCommonVCSDirs(t *testing.T) {
	w := &Watcher{config: DefaultWatcherConfig()}

	for _, name := range []string{".git", "node_modules", "vendor", "target"} {
		if !w.shouldExcludeDirectory(filepath.Join("/repo", name)) {
			t.Errorf("expected %s to be excluded", name)
		}
	}
	if w.shouldExcludeDirectory(filepath.Join("/repo", "internal")) {
		t.Errorf("did not expect internal to be excluded")
	}
}

func TestShouldProcessFileRespectsIncludePatterns(t *testing.T) {
	w := &Watcher{config: WatcherConfig{IncludePatterns: []string{"*.go"}}}

	if !w.shouldProcessFile("main.go") {
		t.Errorf("expected main.go to be processed")
	}
	if w.shouldProcessFile("main.py") {
		t.Errorf("did not expect main.py to be processed")
	}
}

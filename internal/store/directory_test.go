package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codanna/codanna/internal/registry"
)

func TestIndexDirectoryIndexesRecognizedFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reg := registry.New(nil)

	dir := t.TempDir()
	goFile := filepath.Join(dir, "sample.go")
	if err := os.WriteFile(goFile, []byte("package sample\n\nfunc Greet() string { return \"hi\" }\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "vendor"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vendor", "skip.go"), []byte("package vendor\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	stats, err := s.IndexDirectory(ctx, reg, DefaultDirectoryConfig(), dir)
	if err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}
	if stats.FilesIndexed != 1 {
		t.Fatalf("FilesIndexed = %d, want 1 (got stats %+v)", stats.FilesIndexed, stats)
	}
	if stats.FilesSkipped != 1 {
		t.Fatalf("FilesSkipped = %d, want 1 (README.md)", stats.FilesSkipped)
	}

	symbols, err := s.GetSymbolsInFile(ctx, goFile)
	if err != nil {
		t.Fatalf("GetSymbolsInFile: %v", err)
	}
	if len(symbols) == 0 {
		t.Fatalf("expected symbols extracted from %s", goFile)
	}
	for _, sym := range symbols {
		if sym.ModulePath == "" {
			t.Errorf("symbol %q has empty ModulePath, want ConfigureSymbol to have set it", sym.Name)
		}
	}
}

func TestIndexDirectoryIncrementalSkipsUnchangedFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reg := registry.New(nil)

	dir := t.TempDir()
	goFile := filepath.Join(dir, "sample.go")
	content := []byte("package sample\n\nfunc Greet() string { return \"hi\" }\n")
	if err := os.WriteFile(goFile, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := DefaultDirectoryConfig()
	cfg.Incremental = true

	first, err := s.IndexDirectory(ctx, reg, cfg, dir)
	if err != nil {
		t.Fatalf("IndexDirectory (first pass): %v", err)
	}
	if first.FilesIndexed != 1 {
		t.Fatalf("first pass FilesIndexed = %d, want 1", first.FilesIndexed)
	}

	second, err := s.IndexDirectory(ctx, reg, cfg, dir)
	if err != nil {
		t.Fatalf("IndexDirectory (second pass): %v", err)
	}
	if second.FilesIndexed != 0 || second.FilesSkipped != 1 {
		t.Fatalf("second pass = %+v, want FilesIndexed=0 FilesSkipped=1", second)
	}
}

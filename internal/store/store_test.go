package store

import (
	"context"
	"testing"

	"github.com/codanna/codanna/internal/lang"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	opts := DefaultBadgerOptions("")
	opts.InMemory = true

	storage, err := NewBadgerStorage(opts)
	if err != nil {
		t.Fatalf("NewBadgerStorage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	return New(storage, DefaultConfig())
}

func TestIndexFileAndGetSymbol(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	symbols := []*lang.Symbol{
		{ID: 1, Name: "Greeter", Kind: lang.KindStruct},
		{ID: 2, Name: "Greet", Kind: lang.KindMethod},
	}

	if err := s.IndexFile(ctx, "sample.go", "go", []byte("package sample"), lang.FileID(1), symbols); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	got, err := s.GetSymbol(ctx, "sample.go", 1)
	if err != nil {
		t.Fatalf("GetSymbol: %v", err)
	}
	if got.Name != "Greeter" {
		t.Errorf("GetSymbol name = %q, want Greeter", got.Name)
	}

	inFile, err := s.GetSymbolsInFile(ctx, "sample.go")
	if err != nil {
		t.Fatalf("GetSymbolsInFile: %v", err)
	}
	if len(inFile) != 2 {
		t.Fatalf("GetSymbolsInFile returned %d symbols, want 2", len(inFile))
	}

	record, err := s.GetFileRecord(ctx, "sample.go")
	if err != nil {
		t.Fatalf("GetFileRecord: %v", err)
	}
	if record.SymbolCount != 2 || record.Language != "go" {
		t.Errorf("unexpected file record: %+v", record)
	}
}

func TestFindSymbolsByNameAndKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	symbols := []*lang.Symbol{
		{ID: 1, Name: "Greeter", Kind: lang.KindStruct},
		{ID: 2, Name: "Greet", Kind: lang.KindMethod},
		{ID: 3, Name: "Other", Kind: lang.KindMethod},
	}
	if err := s.IndexFile(ctx, "sample.go", "go", []byte("package sample"), lang.FileID(1), symbols); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	byName, err := s.FindSymbols(ctx, Query{Name: "greeter"})
	if err != nil {
		t.Fatalf("FindSymbols by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Greeter" {
		t.Fatalf("FindSymbols by name = %+v, want [Greeter]", byName)
	}

	byKind, err := s.FindSymbols(ctx, Query{Kind: lang.KindMethod})
	if err != nil {
		t.Fatalf("FindSymbols by kind: %v", err)
	}
	if len(byKind) != 2 {
		t.Fatalf("FindSymbols by kind returned %d, want 2", len(byKind))
	}
}

func TestDeleteFileRemovesSymbolsAndIndices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	symbols := []*lang.Symbol{{ID: 1, Name: "Greeter", Kind: lang.KindStruct}}
	if err := s.IndexFile(ctx, "sample.go", "go", []byte("package sample"), lang.FileID(1), symbols); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	if err := s.DeleteFile(ctx, "sample.go"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	if _, err := s.GetSymbol(ctx, "sample.go", 1); err == nil {
		t.Fatalf("expected GetSymbol to fail after DeleteFile")
	}

	byName, err := s.FindSymbols(ctx, Query{Name: "greeter"})
	if err != nil {
		t.Fatalf("FindSymbols: %v", err)
	}
	if len(byName) != 0 {
		t.Fatalf("expected no symbols after delete, got %+v", byName)
	}
}

func TestIndexFileReplacesPreviousSymbols(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []*lang.Symbol{{ID: 1, Name: "Old", Kind: lang.KindFunction}}
	if err := s.IndexFile(ctx, "sample.go", "go", []byte("v1"), lang.FileID(1), first); err != nil {
		t.Fatalf("IndexFile v1: %v", err)
	}

	second := []*lang.Symbol{{ID: 2, Name: "New", Kind: lang.KindFunction}}
	if err := s.IndexFile(ctx, "sample.go", "go", []byte("v2"), lang.FileID(1), second); err != nil {
		t.Fatalf("IndexFile v2: %v", err)
	}

	symbols, err := s.GetSymbolsInFile(ctx, "sample.go")
	if err != nil {
		t.Fatalf("GetSymbolsInFile: %v", err)
	}
	if len(symbols) != 1 || symbols[0].Name != "New" {
		t.Fatalf("expected only New after re-index, got %+v", symbols)
	}
}

// TestFindSymbolsAcrossFiles guards against symbol-ID collisions: every
// file's SymbolCounter restarts at 1, so the name/kind indices must
// resolve through file-qualified keys rather than bare IDs, or a query
// spanning multiple files would return whichever file happened to
// claim that ID last.
func TestFindSymbolsAcrossFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := []*lang.Symbol{{ID: 1, Name: "Greeter", Kind: lang.KindStruct}}
	if err := s.IndexFile(ctx, "a.go", "go", []byte("a"), lang.FileID(1), a); err != nil {
		t.Fatalf("IndexFile a.go: %v", err)
	}
	b := []*lang.Symbol{{ID: 1, Name: "Other", Kind: lang.KindStruct}}
	if err := s.IndexFile(ctx, "b.go", "go", []byte("b"), lang.FileID(1), b); err != nil {
		t.Fatalf("IndexFile b.go: %v", err)
	}

	byKind, err := s.FindSymbols(ctx, Query{Kind: lang.KindStruct})
	if err != nil {
		t.Fatalf("FindSymbols by kind: %v", err)
	}
	if len(byKind) != 2 {
		t.Fatalf("FindSymbols by kind returned %d, want 2 (got %+v)", len(byKind), byKind)
	}

	byName, err := s.FindSymbols(ctx, Query{Name: "greeter"})
	if err != nil {
		t.Fatalf("FindSymbols by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Greeter" {
		t.Fatalf("FindSymbols by name = %+v, want [Greeter]", byName)
	}
}

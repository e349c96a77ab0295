package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codanna/codanna/internal/lang"
)

// excludedDirs mirrors internal/watch's directory-skip list so a
// directory index and a running watch agree on what "the project"
// means.
var excludedDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true, ".bzr": true,
	"node_modules": true, "vendor": true, "target": true,
	".vscode": true, ".idea": true, "__pycache__": true,
}

// DirectoryConfig bounds DirectoryStats.IndexDirectory's walk.
type DirectoryConfig struct {
	// Workers caps concurrent file parses. 0 defaults to 4, matching
	// the teacher's BuilderConfig.Workers default in
	// internal/index/builder.go.
	Workers int

	// Settings gates which languages IndexDirectory will parse, per
	// LanguageDefinition.IsEnabled (spec 6). Zero value enables every
	// language at its own default.
	Settings lang.Settings

	// Incremental skips re-parsing a file whose content hash matches
	// its last-indexed FileRecord.Hash.
	Incremental bool
}

// DefaultDirectoryConfig returns the teacher's default worker count.
func DefaultDirectoryConfig() DirectoryConfig {
	return DirectoryConfig{Workers: 4}
}

// DirectoryStats reports one IndexDirectory run, matching the shape of
// the teacher's BuildStats in internal/index/builder.go.
type DirectoryStats struct {
	FilesDiscovered int
	FilesIndexed    int
	FilesSkipped    int
	FilesErrored    int
	SymbolsIndexed  int
	Duration        time.Duration
	Errors          []DirectoryError
}

// DirectoryError records one file's indexing failure.
type DirectoryError struct {
	Path string
	Err  error
}

// IndexDirectory walks roots, parsing and indexing every file whose
// extension resolves through registry, bounded to config.Workers
// concurrent parses via errgroup.SetLimit — replacing the teacher's
// raw semaphore-channel + sync.WaitGroup pool in
// SymbolExtractor.ExtractSymbolsFromDirectory with the idiomatic
// equivalent.
func (s *Store) IndexDirectory(ctx context.Context, registry *lang.LanguageRegistry, config DirectoryConfig, roots ...string) (DirectoryStats, error) {
	if config.Workers <= 0 {
		config.Workers = DefaultDirectoryConfig().Workers
	}

	start := time.Now()
	var stats DirectoryStats
	var mu sync.Mutex
	var nextFileID atomic.Uint64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for _, root := range roots {
		root := root
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && excludedDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			def, ok := registry.ByExtension(ext)
			if !ok || !def.IsEnabled(config.Settings) {
				mu.Lock()
				stats.FilesSkipped++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			stats.FilesDiscovered++
			mu.Unlock()

			file := lang.FileID(nextFileID.Add(1))

			g.Go(func() error {
				symbols, unchanged, indexErr := s.indexOneFile(gctx, def, path, root, file, config.Incremental)
				mu.Lock()
				defer mu.Unlock()
				if indexErr != nil {
					stats.FilesErrored++
					stats.Errors = append(stats.Errors, DirectoryError{Path: path, Err: indexErr})
					return nil
				}
				if unchanged {
					stats.FilesSkipped++
					return nil
				}
				stats.FilesIndexed++
				stats.SymbolsIndexed += symbols
				return nil
			})
			return nil
		})
		if err != nil {
			return stats, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (s *Store) indexOneFile(ctx context.Context, def lang.LanguageDefinition, path, root string, file lang.FileID, incremental bool) (symbolCount int, unchanged bool, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false, fmt.Errorf("read: %w", err)
	}

	if incremental {
		if existing, existingErr := s.GetFileRecord(ctx, path); existingErr == nil {
			if existing.Hash == s.hashBytes(content) {
				return 0, true, nil
			}
		}
	}

	parser, err := def.CreateParser(lang.Settings{})
	if err != nil {
		return 0, false, fmt.Errorf("create parser: %w", err)
	}

	counter := lang.NewSymbolCounter()
	symbols := parser.Parse(content, file, counter)

	behavior := def.CreateBehavior()
	modulePath, _ := behavior.ModulePathFromFile(path, root)
	for _, sym := range symbols {
		behavior.ConfigureSymbol(sym, modulePath)
	}

	if err := s.IndexFile(ctx, path, string(def.ID()), content, file, symbols); err != nil {
		return 0, false, fmt.Errorf("index: %w", err)
	}
	return len(symbols), false, nil
}

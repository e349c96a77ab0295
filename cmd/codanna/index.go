package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codanna/codanna/internal/lang/diag"
	"github.com/codanna/codanna/internal/store"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the symbol index",
	Long: `Manage the on-disk symbol index used by query and watch. The index
must be built before those commands have anything to read.`,
}

var rebuildIndexCmd = &cobra.Command{
	Use:   "rebuild [path...]",
	Short: "Parse and index every recognized source file under the given paths",
	Long: `Rebuild walks the given paths (current directory if none given),
parses every file whose extension matches a registered language, and
replaces that file's previously indexed symbols.

EXAMPLES:
    codanna index rebuild                  # Index the current directory
    codanna index rebuild ./src ./internal # Index specific directories`,
	RunE: runRebuildIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index location, size, and stored key count",
	RunE:  runIndexStatus,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all index data",
	RunE:  runClearIndex,
}

var indexForce bool

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(rebuildIndexCmd)
	indexCmd.AddCommand(statusCmd)
	indexCmd.AddCommand(clearCmd)

	rebuildIndexCmd.Flags().IntVarP(&config.Workers, "workers", "w", 4, "Number of parallel parse workers")
	rebuildIndexCmd.Flags().BoolVar(&config.Incremental, "incremental", false, "Skip files whose content hash is unchanged")

	clearCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "Clear without confirmation")
}

func runRebuildIndex(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get current directory: %w", err)
		}
		paths = []string{pwd}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("path does not exist: %s", path)
		}
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	sink := diag.NewZapSink(logger)

	storage, st, err := openStore()
	if err != nil {
		return err
	}
	defer storage.Close()

	registry := newRegistry(sink)
	dirConfig := store.DirectoryConfig{Workers: config.Workers, Settings: languageSettings(), Incremental: config.Incremental}

	fmt.Printf("Indexing: %s\n", strings.Join(paths, ", "))
	startTime := time.Now()
	stats, err := st.IndexDirectory(cmd.Context(), registry, dirConfig, paths...)
	duration := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	fmt.Printf("Done in %v\n", duration)
	fmt.Printf("Files discovered: %d\n", stats.FilesDiscovered)
	fmt.Printf("Files indexed:    %d\n", stats.FilesIndexed)
	fmt.Printf("Files skipped:    %d\n", stats.FilesSkipped)
	fmt.Printf("Symbols indexed:  %d\n", stats.SymbolsIndexed)
	if stats.FilesErrored > 0 {
		fmt.Printf("Files errored:    %d\n", stats.FilesErrored)
		if config.Verbose {
			for _, e := range stats.Errors {
				fmt.Printf("  %s: %v\n", e.Path, e.Err)
			}
		}
	}
	return nil
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	storage, _, err := openStore()
	if err != nil {
		return err
	}
	defer storage.Close()

	indexPath := defaultIndexPath()
	var indexDirSize int64
	if stat, err := os.Stat(indexPath); err == nil && stat.IsDir() {
		filepath.WalkDir(indexPath, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				indexDirSize += info.Size()
			}
			return nil
		})
	}

	statsSnapshot := storage.Stats()

	if config.JSON {
		return outputJSON(map[string]any{
			"index_path": indexPath,
			"index_size": indexDirSize,
			"key_count":  statsSnapshot.KeyCount,
			"read_count": statsSnapshot.ReadCount,
		})
	}

	fmt.Printf("Index location: %s\n", indexPath)
	fmt.Printf("Index size: %s\n", formatBytes(indexDirSize))
	fmt.Printf("Keys stored: %d\n", statsSnapshot.KeyCount)
	return nil
}

func runClearIndex(cmd *cobra.Command, args []string) error {
	if !indexForce {
		fmt.Print("This will permanently delete all index data. Continue? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	storage, _, err := openStore()
	if err != nil {
		return err
	}
	storage.Close()

	indexPath := defaultIndexPath()
	if stat, err := os.Stat(indexPath); err == nil && stat.IsDir() {
		if err := os.RemoveAll(indexPath); err != nil {
			return fmt.Errorf("remove index directory: %w", err)
		}
	}
	fmt.Println("Index cleared.")
	return nil
}

// openStore opens the BadgerDB-backed storage and Store at
// config.IndexPath (or the default cache location).
func openStore() (*store.BadgerStorage, *store.Store, error) {
	indexPath := defaultIndexPath()
	if err := os.MkdirAll(indexPath, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create index directory: %w", err)
	}

	opts := store.DefaultBadgerOptions(indexPath)
	storage, err := store.NewBadgerStorage(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	return storage, store.New(storage, store.DefaultConfig()), nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codanna/codanna/internal/lang/diag"
	"github.com/codanna/codanna/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Keep the index current as files change, until interrupted",
	Long: `Watch registers the given directories (current directory if none
given) with the filesystem notifier and re-indexes a file whenever it
is created, written, or removed. Runs until interrupted (Ctrl-C).`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dirs := args
	if len(dirs) == 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get current directory: %w", err)
		}
		dirs = []string{pwd}
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

	watchConfig := watch.DefaultWatcherConfig()
	watchConfig.WatchDirs = dirs
	watchConfig.Verbose = config.Verbose
	watchConfig.Settings = languageSettings()
	watchConfig.ErrorCallback = func(err error) {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
	}

	watcher, err := watch.NewWatcher(st, registry, sink, watchConfig)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	fmt.Printf("Watching: %v (Ctrl-C to stop)\n", dirs)
	<-ctx.Done()
	return watcher.Stop()
}

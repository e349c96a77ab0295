package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
	"github.com/codanna/codanna/internal/registry"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Config holds every flag codanna's subcommands read. The fields are
// filled from command-line flags only: the persistent flags are also
// registered with Viper (CODANNA_ env prefix, .codanna.yaml config
// file), but Viper's values are not copied back into Config, and
// nothing fills Languages.
type Config struct {
	IndexPath string `json:"index_path"`
	Verbose   bool   `json:"verbose"`
	JSON      bool   `json:"json"`

	Workers      int  `json:"workers"`
	Incremental  bool `json:"incremental"`

	Languages map[string]bool `json:"languages"`
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "codanna",
	Short: "A multi-language symbol index and parser coverage tool",
	Long: `codanna parses source files with tree-sitter grammars into a common
symbol/resolution/inheritance model, persists the result, and keeps it
current as files change.

EXAMPLES:
    codanna index rebuild ./src
    codanna query symbol Greeter
    codanna query kind struct
    codanna watch ./src
    codanna audit go testdata/sample.go`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&config.IndexPath, "index-path", "", "Custom index location (default ~/.cache/codanna/index)")
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "Show detailed progress information")
	rootCmd.PersistentFlags().BoolVar(&config.JSON, "json", false, "Output results as JSON")

	viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.SetConfigName(".codanna")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("CODANNA")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the zap.Logger every subcommand threads down as a
// diag.Sink, following the teacher's Cobra/Viper init()/initConfig()
// wiring pattern but for structured logging instead of flag binding.
func newLogger() (*zap.Logger, error) {
	if config.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newRegistry builds the lang.LanguageRegistry used by every
// subcommand. It registers every language unconditionally; per-language
// enable/disable is applied separately through languageSettings() and
// LanguageDefinition.IsEnabled.
func newRegistry(sink diag.Sink) *lang.LanguageRegistry {
	return registry.New(sink)
}

func languageSettings() lang.Settings {
	settings := lang.Settings{Languages: make(map[string]lang.LanguageSetting, len(config.Languages))}
	for name, enabled := range config.Languages {
		settings.Languages[name] = lang.LanguageSetting{Enabled: enabled}
	}
	return settings
}

func defaultIndexPath() string {
	if config.IndexPath != "" {
		return config.IndexPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codanna-index"
	}
	return filepath.Join(home, ".cache", "codanna", "index")
}

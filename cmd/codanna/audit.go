package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

var auditCmd = &cobra.Command{
	Use:   "audit LANGUAGE FILE",
	Short: "Report tree-sitter grammar node coverage for a language against a sample file",
	Long: `Parses a sample file twice — once with a bare tree-sitter walk to
discover every grammar node kind present, once through the language's
own parser to see which kinds it dispatches on — and reports the gap
as a coverage percentage and Markdown table.

EXAMPLE:
    codanna audit go testdata/sample.go`,
	Args: cobra.ExactArgs(2),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	languageID, path := args[0], args[1]

	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	sink := diag.NewZapSink(logger)

	registry := newRegistry(sink)
	def, ok := registry.ByID(lang.LanguageID(languageID))
	if !ok {
		return fmt.Errorf("unknown language %q", languageID)
	}

	report, err := lang.Audit(def, languageSettings(), code, sink)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	if config.JSON {
		return outputJSON(report)
	}

	fmt.Println(report.Markdown())
	return nil
}

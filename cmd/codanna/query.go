package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Look up indexed symbols by name or kind",
}

var querySymbolCmd = &cobra.Command{
	Use:   "symbol NAME",
	Short: "Find symbols by name (case-insensitive) across every indexed file",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuerySymbol,
}

var queryKindCmd = &cobra.Command{
	Use:   "kind KIND",
	Short: "Find symbols of one kind (struct, function, method, interface, ...)",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryKind,
}

var queryLimit int

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(querySymbolCmd)
	queryCmd.AddCommand(queryKindCmd)

	queryCmd.PersistentFlags().IntVar(&queryLimit, "limit", 50, "Maximum number of results")
}

func runQuerySymbol(cmd *cobra.Command, args []string) error {
	return runQuery(store.Query{Name: args[0], Limit: queryLimit})
}

func runQueryKind(cmd *cobra.Command, args []string) error {
	return runQuery(store.Query{Kind: lang.Kind(args[0]), Limit: queryLimit})
}

func runQuery(query store.Query) error {
	storage, st, err := openStore()
	if err != nil {
		return err
	}
	defer storage.Close()

	symbols, err := st.FindSymbols(rootCmd.Context(), query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	if config.JSON {
		return outputJSON(symbols)
	}

	if len(symbols) == 0 {
		fmt.Println("No matching symbols.")
		return nil
	}
	for _, s := range symbols {
		fmt.Printf("%-10s %-30s %s\n", s.Kind, s.Name, s.Signature)
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tablens/adapters/ingest"
	"tablens/internal/profile"
	"tablens/internal/query"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tablens",
		Short: "Analyze tabular data files from the command line",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var queryText string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run a free-text analysis query against a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := ingest.NewReader().ReadFile(args[0])
			if err != nil {
				return err
			}
			response := query.Analyze(queryText, ds)
			return printJSON(response)
		},
	}

	cmd.Flags().StringVarP(&queryText, "query", "q", "explain this dataset", "analysis query")
	return cmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [file]",
		Short: "Print the column and dataset profile of a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := ingest.NewReader().ReadFile(args[0])
			if err != nil {
				return err
			}
			return printJSON(profile.Dataset(ds))
		},
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

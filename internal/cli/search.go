package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Boswecw/cortex-local/internal/query"
)

var (
	searchLimit    int
	searchOffset   int
	searchFileType string
	semanticLimit  int
	semanticThresh float32
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Lexical search over indexed files",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var semanticSearchCmd = &cobra.Command{
	Use:   "semantic-search [query]",
	Short: "Embedding-similarity search over indexed files",
	Args:  cobra.ExactArgs(1),
	RunE:  runSemanticSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd, semanticSearchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "maximum results to return")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "result offset")
	searchCmd.Flags().StringVar(&searchFileType, "file-type", "", "restrict results to this file extension")

	semanticSearchCmd.Flags().IntVar(&semanticLimit, "limit", 50, "maximum results to return")
	semanticSearchCmd.Flags().Float32Var(&semanticThresh, "threshold", 0.7, "minimum cosine similarity")
}

func runSearch(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	var filters *query.Filters
	if searchFileType != "" {
		filters = &query.Filters{FileType: searchFileType}
	}

	resp, err := application.surface.SearchFiles(args[0], filters, searchLimit, searchOffset)
	if err != nil {
		return err
	}

	fmt.Printf("%d results (%dms)\n", resp.Total, resp.QueryTimeMs)
	for _, r := range resp.Results {
		fmt.Printf("  [%d] %s\n      %s\n", r.FileID, r.Path, r.Snippet)
	}
	return nil
}

func runSemanticSearch(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	results, err := application.surface.SemanticSearch(context.Background(), args[0], semanticLimit, semanticThresh)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("  [%d] %.3f %s\n", r.FileID, r.Score, r.Path)
	}
	return nil
}

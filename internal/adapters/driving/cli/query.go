package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

var (
	queryK      int
	queryTicker string
	queryDocs   []string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve cited passages",
	Long: `Rank indexed chunks against the query and print them as citations.

Each citation names its document and location (page, sheet rows or section)
and quotes an excerpt of the chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "limit", "k", 0, "maximum number of citations (default from settings)")
	queryCmd.Flags().StringVarP(&queryTicker, "ticker", "t", "", "restrict to documents for a ticker")
	queryCmd.Flags().StringSliceVarP(&queryDocs, "doc", "d", nil, "restrict to document IDs")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output citations as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	citations, err := rt.Query.Query(cmd.Context(), args[0], domain.QueryOptions{
		Scope:  queryDocs,
		Ticker: queryTicker,
		K:      queryK,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputJSON(cmd, citations)
	}
	printCitations(cmd, citations)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printCitations(cmd *cobra.Command, citations []domain.Citation) {
	if len(citations) == 0 {
		cmd.Println("No relevant passages found.")
		return
	}

	for _, c := range citations {
		cmd.Printf("  %s %s, %s %s\n", sourceLabel(c.Rank), c.DocumentName, c.Locator,
			mutedStyle.Render(fmt.Sprintf("(%.2f)", c.Score)))
		excerpt := c.Excerpt
		if c.Truncated {
			excerpt += " …"
		}
		cmd.Println(excerptStyle.Render(excerpt))
		cmd.Println()
	}
}

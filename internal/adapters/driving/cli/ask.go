package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

var (
	askType   string
	askTicker string
	askK      int
	askDocs   []string
	askJSON   bool

	entitiesJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a research question with cited sources",
	Long: `Retrieve the most relevant passages and ask the configured LLM to answer
from them, citing each claim as [Source N].

Analysis types: general, fundamental, technical, sentiment, news.
The LLM is configured with 'jse settings set llm.*' or JSE_LLM_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var summariseCmd = &cobra.Command{
	Use:     "summarise [doc-id]",
	Aliases: []string{"summarize"},
	Short:   "Summarise a document with the LLM",
	Args:    cobra.ExactArgs(1),
	RunE:    runSummarise,
}

var entitiesCmd = &cobra.Command{
	Use:   "entities [doc-id]",
	Short: "List companies, tickers, people and figures named in a document",
	Long: `Ask the configured LLM for the financial entities in the start of a
document: companies, tickers, people, monetary values, dates and metrics.
Tickers that are not 2 to 5 letter JSE codes are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runEntities,
}

func init() {
	askCmd.Flags().StringVar(&askType, "type", string(domain.AnalysisGeneral), "analysis type")
	askCmd.Flags().StringVarP(&askTicker, "ticker", "t", "", "restrict sources to a ticker")
	askCmd.Flags().IntVarP(&askK, "limit", "k", 0, "maximum number of sources (default from settings)")
	askCmd.Flags().StringSliceVarP(&askDocs, "doc", "d", nil, "restrict sources to document IDs")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summariseCmd)

	entitiesCmd.Flags().BoolVar(&entitiesJSON, "json", false, "output entities as JSON")
	rootCmd.AddCommand(entitiesCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	answer, err := rt.Analyst.Ask(cmd.Context(), args[0], domain.QueryOptions{
		Scope:  askDocs,
		Ticker: askTicker,
		K:      askK,
	}, domain.AnalysisType(strings.ToLower(askType)))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("Answer (%s, %s)", answer.AnalysisType, answer.Model)))
	cmd.Println()
	cmd.Println(answer.Text)
	cmd.Println()
	if len(answer.Citations) > 0 {
		cmd.Println(titleStyle.Render("Sources"))
		printCitations(cmd, answer.Citations)
	}
	return nil
}

func runSummarise(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	summary, err := rt.Analyst.Summarise(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("summarise failed: %w", err)
	}
	cmd.Println(summary)
	return nil
}

func runEntities(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	entities, err := rt.Analyst.ExtractEntities(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("entity extraction failed: %w", err)
	}

	if entitiesJSON {
		return outputJSON(cmd, entities)
	}

	if entities.Raw != "" {
		cmd.Println(warningStyle.Render("The model did not return structured entities:"))
		cmd.Println(entities.Raw)
		return nil
	}

	for _, group := range []struct {
		title  string
		values []string
	}{
		{"Companies", entities.Companies},
		{"Tickers", entities.Tickers},
		{"People", entities.People},
		{"Monetary values", entities.MonetaryValues},
		{"Dates", entities.Dates},
		{"Metrics", entities.Metrics},
	} {
		if len(group.values) == 0 {
			continue
		}
		cmd.Println(titleStyle.Render(group.title))
		for _, v := range group.values {
			cmd.Printf("  %s\n", v)
		}
	}
	return nil
}

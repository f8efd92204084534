package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/services"
)

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Manage ingested documents",
	Long:    `List, inspect or remove ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var removeCmd = &cobra.Command{
	Use:     "remove [doc-id]",
	Aliases: []string{"rm"},
	Short:   "Remove a document from the index",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var documentListTicker string

func init() {
	documentListCmd.Flags().StringVarP(&documentListTicker, "ticker", "t", "", "only documents for a ticker")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentContentCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(removeCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	docs, err := rt.Documents.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	shown := 0
	for i := range docs {
		if documentListTicker != "" && !strings.EqualFold(docs[i].Ticker, documentListTicker) {
			continue
		}
		shown++
		ticker := ""
		if docs[i].Ticker != "" {
			ticker = " " + sourceStyle.Render(docs[i].Ticker)
		}
		cmd.Printf("  %s%s\n", docs[i].ID, ticker)
		cmd.Printf("    %s\n", mutedStyle.Render(fmt.Sprintf("%s, %s, generation %d",
			docs[i].DisplayName(), docs[i].MIMEType, docs[i].Generation)))
	}

	if shown == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	cmd.Printf("\nTotal: %d documents\n", shown)
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	details, err := rt.Documents.GetDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Println(titleStyle.Render("Document: " + details.ID))
	cmd.Println()
	cmd.Printf("  Name:       %s\n", details.Name)
	cmd.Printf("  Type:       %s\n", details.MIMEType)
	if details.Ticker != "" {
		cmd.Printf("  Ticker:     %s\n", details.Ticker)
	}
	cmd.Printf("  State:      %s\n", details.State)
	cmd.Printf("  Generation: %d\n", details.Generation)
	cmd.Printf("  Chunks:     %d\n", details.ChunkCount)
	cmd.Printf("  Length:     %d characters\n", details.Length)
	cmd.Printf("  Ingested:   %s\n", details.IngestedAt.Format("2006-01-02 15:04:05"))

	if len(details.Metadata) > 0 {
		cmd.Println("\n  Metadata:")
		for _, k := range services.MetadataKeys(details.Metadata) {
			cmd.Printf("    %s: %s\n", k, details.Metadata[k])
		}
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	content, err := rt.Documents.GetContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}
	cmd.Println(content)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	if err := rt.Ingest.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

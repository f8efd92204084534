package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/app"
	"github.com/Cyb-Leon/jse-decision-support/internal/connectors/filesystem"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/services"
)

var (
	ingestTicker string
	ingestID     string
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Extract, chunk and index documents",
	Long: `Ingest files or directories into the index.

Supported formats are PDF, Word (.docx), Excel (.xlsx), CSV/TSV, HTML,
Markdown and plain text. Directories are scanned recursively; hidden files
are skipped. Re-ingesting a file replaces its previous version atomically.

Examples:
  jse ingest reports/npn-annual-2024.pdf --ticker NPN
  jse ingest research/ --ticker SOL`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTicker, "ticker", "t", "", "associate documents with a JSE ticker")
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID (single file only; default is the file path)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output outcomes as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestResult is the JSON form of an outcome.
type ingestResult struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}
	if ingestID != "" && len(args) > 1 {
		return errors.New("--id can only be used with a single file")
	}
	if _, err := services.NormaliseTicker(ingestTicker); err != nil {
		return err
	}

	ctx := cmd.Context()
	var outcomes []driving.IngestOutcome
	var scanErrs []error

	var files []driving.IngestRequest
	for _, arg := range args {
		path := filesystem.ResolvePath(arg)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", arg, err)
		}

		if info.IsDir() {
			if ingestID != "" {
				return errors.New("--id cannot be used with a directory")
			}
			dirOutcomes, err := directoryConnector(rt, path, ingestTicker).Sync(ctx, rt.Ingest)
			outcomes = append(outcomes, dirOutcomes...)
			if err != nil {
				scanErrs = append(scanErrs, err)
			}
			continue
		}

		req, err := fileRequest(path)
		if err != nil {
			return err
		}
		files = append(files, req)
	}
	if len(files) > 0 {
		outcomes = append(outcomes, rt.Ingest.IngestBatch(ctx, files)...)
	}

	if err := printOutcomes(cmd, outcomes); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		scanErrs = append(scanErrs, fmt.Errorf("%d of %d documents failed", failed, len(outcomes)))
	}
	return errors.Join(scanErrs...)
}

// directoryConnector scans a directory for formats the registry can extract.
func directoryConnector(rt *app.Runtime, dir, ticker string) *filesystem.Connector {
	return filesystem.New(dir,
		filesystem.WithTicker(ticker),
		filesystem.WithFilter(rt.Registry.Supports),
	)
}

// fileRequest reads a single file. Its ID defaults to the cleaned path.
func fileRequest(path string) (driving.IngestRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return driving.IngestRequest{}, fmt.Errorf("read %s: %w", path, err)
	}

	id := ingestID
	if id == "" {
		id = filepath.ToSlash(filepath.Clean(path))
	}

	return driving.IngestRequest{
		ID:      id,
		Name:    filepath.Base(path),
		Ticker:  ingestTicker,
		Content: content,
		Metadata: map[string]any{
			"path": path,
		},
	}, nil
}

func printOutcomes(cmd *cobra.Command, outcomes []driving.IngestOutcome) error {
	if ingestJSON {
		results := make([]ingestResult, len(outcomes))
		for i, o := range outcomes {
			results[i] = ingestResult{Name: o.Name, DocumentID: o.DocumentID}
			if o.Err != nil {
				results[i].Error = o.Err.Error()
			}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outcomes: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(outcomes) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for _, o := range outcomes {
		if o.Err != nil {
			cmd.Printf("  %s %s: %v\n", errorStyle.Render("✗"), o.Name, o.Err)
			continue
		}
		cmd.Printf("  %s %s %s\n", successStyle.Render("✓"), o.Name, mutedStyle.Render("("+o.DocumentID+")"))
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/app"
	"github.com/Cyb-Leon/jse-decision-support/internal/connectors/filesystem"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/services"
)

var (
	watchTicker string
	watchSkip   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep a directory indexed",
	Long: `Ingest every supported file below a directory, then follow changes until
interrupted. New and modified files are re-ingested, superseding the previous
generation; deleted files are removed from the index.

Run with --metrics-addr to expose ingest and query metrics while watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchTicker, "ticker", "t", "", "JSE ticker for every document")
	watchCmd.Flags().BoolVar(&watchSkip, "skip-initial", false, "do not ingest existing files first")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if _, err := services.NormaliseTicker(watchTicker); err != nil {
		return err
	}

	conn := directoryConnector(rt, args[0], watchTicker)
	defer func() { _ = conn.Close() }()
	if err := conn.Validate(ctx); err != nil {
		return err
	}

	if !watchSkip {
		outcomes, err := conn.Sync(ctx, rt.Ingest)
		if perr := printOutcomes(cmd, outcomes); perr != nil {
			return perr
		}
		if err != nil {
			cmd.PrintErrln(errorStyle.Render(err.Error()))
		}
	}

	go printStatusEvents(cmd, rt)

	cmd.Println(mutedStyle.Render(fmt.Sprintf("Watching %s (Ctrl+C to stop)", conn.RootPath())))
	return conn.Follow(ctx, rt.Ingest, func(change filesystem.Change, err error) {
		if err != nil {
			cmd.Printf("%s %s %s: %v\n", errorStyle.Render("✗"), change.Type, change.Request.ID, err)
			return
		}
		cmd.Printf("%s %s %s\n", successStyle.Render("✓"), change.Type, change.Request.ID)
	})
}

// printStatusEvents logs pipeline failures as they are published.
func printStatusEvents(cmd *cobra.Command, rt *app.Runtime) {
	for ev := range rt.Events.Subscribe(cmd.Context()) {
		if ev.Status.Failed() {
			cmd.PrintErrln(warningStyle.Render(fmt.Sprintf("  %s stopped at %s: %v",
				ev.Status.DocumentID, ev.Status.State, ev.Status.Err)))
			continue
		}
		if ev.Status.State == domain.StateQueryable {
			cmd.Println(mutedStyle.Render(fmt.Sprintf("  %s queryable (generation %d, %d chunks)",
				ev.Status.DocumentID, ev.Status.Generation, ev.Chunks)))
		}
	}
}

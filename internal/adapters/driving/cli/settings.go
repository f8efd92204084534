package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/config/file"
	"github.com/Cyb-Leon/jse-decision-support/internal/app"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/services"
)

// newConfigStore opens the settings file. Tests replace it.
var newConfigStore = func(home string) (driven.ConfigStore, error) {
	return file.NewConfigStore(home)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change settings",
	Long: `Settings live in config.toml in the data directory.

Changes are validated before they are written, so an overlap that is not
smaller than the chunk size is rejected. JSE_LLM_API_KEY overrides the
stored API key and is never written to the file.`,
	Annotations: map[string]string{annotationNoRuntime: "true"},
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Change a setting",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List setting keys",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:         "check",
	Short:       "Check the LLM connection",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsService() (*services.SettingsService, error) {
	store, err := newConfigStore(homeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	return services.NewSettingsService(store), nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	s, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println(titleStyle.Render("Pipeline"))
	cmd.Printf("  Chunk size:         %d\n", s.Pipeline.ChunkSize)
	cmd.Printf("  Overlap:            %d\n", s.Pipeline.Overlap)
	cmd.Printf("  Workers:            %d\n", s.Pipeline.Workers)
	cmd.Println()

	cmd.Println(titleStyle.Render("Query"))
	cmd.Printf("  Relevance threshold: %.2f\n", s.Query.RelevanceThreshold)
	cmd.Printf("  Max excerpt length:  %d\n", s.Query.MaxExcerptLength)
	cmd.Printf("  Default K:           %d\n", s.Query.DefaultK)
	cmd.Println()

	cmd.Println(titleStyle.Render("Storage"))
	cmd.Printf("  Backend:            %s\n", s.Storage.Backend)
	cmd.Println()

	cmd.Println(titleStyle.Render("LLM"))
	cmd.Printf("  Model:              %s\n", s.LLM.Model)
	if s.LLM.BaseURL != "" {
		cmd.Printf("  Base URL:           %s\n", s.LLM.BaseURL)
	}
	if s.LLM.APIKey != "" {
		cmd.Printf("  API key:            %s\n", maskAPIKey(s.LLM.APIKey))
	} else {
		cmd.Printf("  API key:            %s\n", warningStyle.Render("not set"))
	}
	cmd.Printf("  Temperature:        %.2f\n", s.LLM.Temperature)
	cmd.Printf("  Max tokens:         %d\n", s.LLM.MaxTokens)
	cmd.Printf("  Requests/second:    %.2f\n", s.LLM.RequestsPerSecond)

	if err := svc.Validate(s); err != nil {
		cmd.Println()
		cmd.Println(errorStyle.Render(err.Error()))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("✓ %s updated", args[0])))
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	for _, k := range svc.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	s, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if err := app.CheckLLM(cmd.Context(), s.LLM); err != nil {
		return err
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("✓ %s is reachable", s.LLM.Model)))
	return nil
}

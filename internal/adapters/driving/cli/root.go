// Package cli provides the jse command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/app"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// annotationNoRuntime marks commands that run without services.
const annotationNoRuntime = "no-runtime"

var (
	verbose     bool
	homeDir     string
	backendFlag string
	metricsAddr string
)

// newRuntime builds the services for one invocation. Tests replace it.
var newRuntime = func(ctx context.Context, opts app.Options) (*app.Runtime, error) {
	return app.New(ctx, opts)
}

var rootCmd = &cobra.Command{
	Use:   "jse",
	Short: "Cited research over JSE company documents",
	Long: `jse turns annual reports, SENS announcements and broker notes into a
searchable index and answers questions about them with cited sources.

Documents are extracted, split into overlapping chunks and indexed. Queries
return ranked excerpts, each pointing back to the page, sheet or section it
came from. With an LLM configured, 'jse ask' writes an answer grounded on
those excerpts.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return closeRuntime(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "data directory (default $JSE_HOME or ~/.jse)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "",
		"document store: memory, sqlite or bolt (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address, e.g. :9090")
}

// Execute runs the root command. The runtime is closed even when the
// command fails.
func Execute(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if cmd != nil {
		if cerr := closeRuntime(cmd); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func setupRuntime(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if cmd.Annotations[annotationNoRuntime] == "true" {
		return nil
	}

	// The root carries the context of this execution; a subcommand keeps
	// the one from its previous run.
	ctx := cmd.Root().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend := domain.StorageBackend(backendFlag)
	if backend != "" && !backend.IsValid() {
		return fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidSettings, backendFlag)
	}

	rt, err := newRuntime(ctx, app.Options{Home: homeDir, Backend: backend})
	if err != nil {
		return err
	}
	cmd.SetContext(app.WithRuntime(ctx, rt))

	if metricsAddr != "" {
		go func() {
			if err := rt.Metrics.Serve(ctx, metricsAddr); err != nil {
				logger.Warn("Metrics server stopped: %v", err)
			}
		}()
		logger.Info("Serving metrics on %s/metrics", metricsAddr)
	}
	return nil
}

func closeRuntime(cmd *cobra.Command) error {
	rt, ok := app.FromContext(cmd.Context())
	if !ok {
		return nil
	}
	return rt.Close()
}

// runtimeFor returns the runtime set up for cmd.
func runtimeFor(cmd *cobra.Command) (*app.Runtime, error) {
	rt, ok := app.FromContext(cmd.Context())
	if !ok {
		return nil, errors.New("services not configured")
	}
	return rt, nil
}

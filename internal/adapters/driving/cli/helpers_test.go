package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/storage/memory"
	"github.com/Cyb-Leon/jse-decision-support/internal/app"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
)

// setupTestRuntime points every command at a bolt store in a temp
// directory, so state persists between invocations within one test.
func setupTestRuntime(t *testing.T) {
	t.Helper()
	setupTestRuntimeWithLLM(t, nil)
}

// setupTestRuntimeWithLLM is setupTestRuntime with llm as the language model.
func setupTestRuntimeWithLLM(t *testing.T, llm driven.LLMService) {
	t.Helper()
	t.Setenv("JSE_LLM_API_KEY", "")

	home := t.TempDir()
	store := memory.NewConfigStore()

	origRuntime, origConfig := newRuntime, newConfigStore
	newRuntime = func(ctx context.Context, opts app.Options) (*app.Runtime, error) {
		opts.Home = home
		opts.ConfigStore = store
		if opts.Backend == "" {
			opts.Backend = domain.StorageBolt
		}
		if llm != nil {
			opts.LLM = llm
		}
		return app.New(ctx, opts)
	}
	newConfigStore = func(string) (driven.ConfigStore, error) {
		return store, nil
	}

	t.Cleanup(func() {
		newRuntime, newConfigStore = origRuntime, origConfig
		resetFlags()
	})
}

// execute runs the root command with args and returns its output.
// Logs and usage go to a separate buffer.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background())
	return buf.String(), err
}

// resetFlags restores flag variables; cobra keeps them between executions.
func resetFlags() {
	verbose, homeDir, backendFlag, metricsAddr = false, "", "", ""
	ingestTicker, ingestID, ingestJSON = "", "", false
	queryK, queryTicker, queryDocs, queryJSON = 0, "", nil, false
	askType, askTicker, askK, askDocs, askJSON = string(domain.AnalysisGeneral), "", 0, nil, false
	entitiesJSON = false
	documentListTicker = ""
	watchTicker, watchSkip = "", false
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/storage/memory"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
)

func newTestRuntime(t *testing.T, backend domain.StorageBackend, home string) *Runtime {
	t.Helper()
	t.Setenv("JSE_LLM_API_KEY", "")

	rt, err := New(context.Background(), Options{
		Home:        home,
		Backend:     backend,
		ConfigStore: memory.NewConfigStore(),
	})
	require.NoError(t, err)
	return rt
}

func TestNew_MemoryBackend(t *testing.T) {
	rt := newTestRuntime(t, domain.StorageMemory, t.TempDir())
	defer rt.Close()

	assert.Equal(t, domain.StorageMemory, rt.Settings.Storage.Backend)
	assert.Nil(t, rt.LLM)

	ctx := context.Background()
	id, err := rt.Ingest.Ingest(ctx, driving.IngestRequest{
		ID:      "npn",
		Name:    "npn.txt",
		Ticker:  "NPN",
		Content: []byte("Naspers headline earnings rose on Tencent."),
	})
	require.NoError(t, err)

	citations, err := rt.Query.Query(ctx, "headline earnings", domain.QueryOptions{Ticker: "NPN"})
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, id, citations[0].DocumentID)

	_, err = rt.Analyst.Ask(ctx, "What happened?", domain.QueryOptions{}, domain.AnalysisGeneral)
	assert.ErrorIs(t, err, domain.ErrLLMNotConfigured)
}

func TestNew_RejectsInvalidSettings(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"pipeline.chunk_size": int64(100),
		"pipeline.overlap":    int64(100),
	})

	_, err := New(context.Background(), Options{Home: t.TempDir(), ConfigStore: store, Backend: domain.StorageMemory})
	assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
}

func TestNew_PersistentBackendsRestoreIndex(t *testing.T) {
	for _, backend := range []domain.StorageBackend{domain.StorageSQLite, domain.StorageBolt} {
		t.Run(backend.String(), func(t *testing.T) {
			home := t.TempDir()
			ctx := context.Background()

			first := newTestRuntime(t, backend, home)
			_, err := first.Ingest.Ingest(ctx, driving.IngestRequest{
				ID:       "sol",
				Name:     "sol.md",
				MIMEType: "text/markdown",
				Content:  []byte("# Sasol\n\nSecunda volumes recovered in the second half."),
			})
			require.NoError(t, err)
			require.NoError(t, first.Close())

			second := newTestRuntime(t, backend, home)
			defer second.Close()

			assert.True(t, second.Index.Has("sol"))
			citations, err := second.Query.Query(ctx, "Secunda volumes", domain.QueryOptions{})
			require.NoError(t, err)
			require.NotEmpty(t, citations)
			assert.Equal(t, "sol", citations[0].DocumentID)

			details, err := second.Documents.GetDetails(ctx, "sol")
			require.NoError(t, err)
			assert.Equal(t, domain.StateQueryable, details.State)
		})
	}
}

func TestRuntime_PublishesEvents(t *testing.T) {
	rt := newTestRuntime(t, domain.StorageMemory, t.TempDir())
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := rt.Events.Subscribe(ctx)

	_, err := rt.Ingest.Ingest(ctx, driving.IngestRequest{ID: "a", Name: "a.txt", Content: []byte("text")})
	require.NoError(t, err)

	var states []domain.PipelineState
	for len(states) < 4 {
		ev := <-sub
		states = append(states, ev.Status.State)
	}
	assert.Equal(t, domain.StateQueryable, states[3])
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	rt := &Runtime{}
	got, ok := FromContext(WithRuntime(context.Background(), rt))
	assert.True(t, ok)
	assert.Same(t, rt, got)
}

func TestClose_Idempotent(t *testing.T) {
	rt := newTestRuntime(t, domain.StorageBolt, t.TempDir())
	require.NoError(t, rt.Close())
	assert.NoError(t, rt.Close())
}

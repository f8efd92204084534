package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/index/bm25"
	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/storage/memory"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors"
	"github.com/Cyb-Leon/jse-decision-support/internal/postprocessors"
)

// harness wires the pipeline over in-memory adapters.
type harness struct {
	store  *memory.DocumentStore
	index  *bm25.Index
	ingest *IngestService
	query  *QueryService
}

func newHarness(t *testing.T, chunkSize, overlap int, opts ...IngestOption) *harness {
	t.Helper()
	return newHarnessWithIndex(t, bm25.New(), chunkSize, overlap, opts...)
}

func newHarnessWithIndex(t *testing.T, index driven.Index, chunkSize, overlap int, opts ...IngestOption) *harness {
	t.Helper()

	pipeline, err := postprocessors.DefaultPipeline(domain.PipelineSettings{
		ChunkSize: chunkSize,
		Overlap:   overlap,
		Workers:   2,
	})
	require.NoError(t, err)

	store := memory.NewDocumentStore()
	query, err := NewQueryService(index, store, domain.DefaultAppSettings().Query)
	require.NoError(t, err)

	h := &harness{
		store:  store,
		ingest: NewIngestService(extractors.NewDefaultRegistry(), pipeline, store, index, opts...),
		query:  query,
	}
	if ix, ok := index.(*bm25.Index); ok {
		h.index = ix
	}
	return h
}

func textRequest(id, text string) driving.IngestRequest {
	return driving.IngestRequest{
		ID:       id,
		Name:     id + ".txt",
		MIMEType: "text/plain",
		Content:  []byte(text),
	}
}

// reconstruct joins chunks with their overlap removed.
func reconstruct(chunks []domain.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(string([]rune(c.Content)[c.Overlap:]))
	}
	return b.String()
}

var errCommit = errors.New("commit refused")

// baseIndex names the embedded index without shadowing the Index method.
type baseIndex = driven.Index

// flakyIndex refuses commits while failCommits is set.
type flakyIndex struct {
	baseIndex

	mu          sync.Mutex
	failCommits bool
}

func (f *flakyIndex) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCommits = v
}

func (f *flakyIndex) Begin(doc driven.IndexedDocument) driven.IndexBatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &flakyBatch{IndexBatch: f.baseIndex.Begin(doc), fail: f.failCommits}
}

type flakyBatch struct {
	driven.IndexBatch
	fail bool
}

func (b *flakyBatch) Commit(ctx context.Context) error {
	if b.fail {
		return errCommit
	}
	return b.IndexBatch.Commit(ctx)
}

// recordingMetrics captures pipeline observations.
type recordingMetrics struct {
	mu      sync.Mutex
	ingests []string
	chunks  int
	queries []error
}

func (m *recordingMetrics) ObserveIngest(result string, _ time.Duration, chunks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingests = append(m.ingests, result)
	m.chunks += chunks
}

func (m *recordingMetrics) ObserveQuery(_ time.Duration, _ int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, err)
}

// recordingEvents captures published status events.
type recordingEvents struct {
	mu     sync.Mutex
	events []domain.StatusEvent
}

func (r *recordingEvents) Publish(e domain.StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEvents) states(id string) []domain.PipelineState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PipelineState
	for _, e := range r.events {
		if e.Status.DocumentID == id {
			out = append(out, e.Status.State)
		}
	}
	return out
}

// mockLLM records the last request and returns a canned reply.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	messages []driven.ChatMessage
	prompt   string
	opts     driven.ChatOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompt = prompt
	m.opts = driven.ChatOptions{MaxTokens: opts.MaxTokens, Temperature: opts.Temperature}
	return m.reply, m.err
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string { return "test-model" }
func (m *mockLLM) Close() error      { return nil }

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

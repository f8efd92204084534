package bm25

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.Index = (*Index)(nil)

// Default BM25 parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Index is an in-memory BM25 index over chunks.
type Index struct {
	k1 float64
	b  float64

	// mu serialises writers. Readers only load current.
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// Option configures the index.
type Option func(*Index)

// WithParameters overrides the BM25 term saturation (k1) and length
// normalisation (b) parameters.
func WithParameters(k1, b float64) Option {
	return func(ix *Index) {
		ix.k1 = k1
		ix.b = b
	}
}

// New creates an empty index.
func New(opts ...Option) *Index {
	ix := &Index{k1: DefaultK1, b: DefaultB}
	for _, opt := range opts {
		opt(ix)
	}
	ix.current.Store(emptySnapshot)
	return ix
}

// cancelled wraps a context error so callers can match domain.ErrCancelled
// as well as the context cause.
func cancelled(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrCancelled, err)
}

// Index adds or replaces a single chunk entry. The document entry is created
// on first use, named from the chunk's document_name metadata if present.
func (ix *Index) Index(ctx context.Context, chunk domain.Chunk) error {
	if chunk.ID == "" || chunk.DocumentID == "" {
		return fmt.Errorf("%w: chunk and document IDs are required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return cancelled("index chunk", err)
	}

	e := newEntry(chunk)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return cancelled("index chunk", err)
	}

	snap := ix.current.Load()
	doc, ok := snap.docs[chunk.DocumentID]
	if !ok {
		name, _ := chunk.Metadata["document_name"].(string)
		if name == "" {
			name = chunk.DocumentID
		}
		doc = buildDocIndex(chunk.DocumentID, name, chunk.Generation, map[string]*entry{})
	}

	ix.current.Store(snap.with(chunk.DocumentID, doc.withEntry(e)))
	return nil
}

// Begin stages a replacement entry set for a document.
func (ix *Index) Begin(doc driven.IndexedDocument) driven.IndexBatch {
	return &batch{
		index:   ix,
		doc:     doc,
		entries: make(map[string]*entry),
	}
}

// publish swaps in a complete entry set for a document.
func (ix *Index) publish(ctx context.Context, doc driven.IndexedDocument, entries map[string]*entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return cancelled("commit", err)
	}

	snap := ix.current.Load()
	if prev, ok := snap.docs[doc.ID]; ok && prev.generation > doc.Generation {
		return fmt.Errorf("%w: generation %d of %s is older than indexed generation %d",
			domain.ErrInvalidInput, doc.Generation, doc.ID, prev.generation)
	}

	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	ix.current.Store(snap.with(doc.ID, buildDocIndex(doc.ID, name, doc.Generation, entries)))

	logger.Debug("Index: committed %s generation %d (%d chunks)", doc.ID, doc.Generation, len(entries))
	return nil
}

// Remove drops every entry for a document.
func (ix *Index) Remove(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return cancelled("remove", err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	snap := ix.current.Load()
	if _, ok := snap.docs[documentID]; !ok {
		return fmt.Errorf("%w: document %s is not indexed", domain.ErrNotFound, documentID)
	}
	ix.current.Store(snap.with(documentID, nil))
	return nil
}

// Has reports whether a document has an entry set.
func (ix *Index) Has(documentID string) bool {
	_, ok := ix.current.Load().docs[documentID]
	return ok
}

// Stats reports index size.
func (ix *Index) Stats() driven.IndexStats {
	snap := ix.current.Load()
	return driven.IndexStats{
		Documents: len(snap.docs),
		Chunks:    snap.chunks,
		Terms:     snap.terms(),
	}
}

// Search scores every chunk in scope against the query and returns those
// scoring strictly above the threshold, best first. Ties are broken by
// sequence, then document ID, then chunk ID, so equal inputs always produce
// the same order.
func (ix *Index) Search(ctx context.Context, query string, opts driven.IndexSearchOptions) (domain.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelled("search", err)
	}

	snap := ix.current.Load()

	docs, err := scopedDocs(snap, opts.Scope)
	if err != nil {
		return nil, err
	}

	terms := uniqueTerms(Tokenize(query))
	if len(terms) == 0 {
		return domain.RetrievalResult{}, nil
	}

	idf := make(map[string]float64, len(terms))
	n := float64(snap.chunks)
	for _, t := range terms {
		df := float64(snap.docFreq(t))
		idf[t] = math.Log(1 + (n-df+0.5)/(df+0.5))
	}
	avg := snap.avgLen()

	var results domain.RetrievalResult
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, cancelled("search", err)
		}

		for _, e := range d.entries {
			raw := ix.score(e, terms, idf, avg)
			if raw <= 0 {
				continue
			}
			score := raw / (raw + 1)
			if score <= opts.Threshold {
				continue
			}
			results = append(results, domain.ScoredChunk{
				Chunk:        e.chunk,
				DocumentName: d.name,
				Score:        score,
			})
		}
	}

	sortResults(results)
	if opts.K > 0 && len(results) > opts.K {
		results = results[:opts.K]
	}
	if results == nil {
		results = domain.RetrievalResult{}
	}
	return results, nil
}

func (ix *Index) score(e *entry, terms []string, idf map[string]float64, avg float64) float64 {
	if e.length == 0 {
		return 0
	}
	norm := 1.0
	if avg > 0 {
		norm = 1 - ix.b + ix.b*float64(e.length)/avg
	}

	var s float64
	for _, t := range terms {
		tf := float64(e.tf[t])
		if tf == 0 {
			continue
		}
		s += idf[t] * tf * (ix.k1 + 1) / (tf + ix.k1*norm)
	}
	return s
}

// scopedDocs resolves the documents a search covers.
func scopedDocs(snap *snapshot, scope []string) ([]*docIndex, error) {
	if len(scope) == 0 {
		if len(snap.docs) == 0 {
			return nil, fmt.Errorf("%w: no documents indexed", domain.ErrIndexUnavailable)
		}
		docs := make([]*docIndex, 0, len(snap.docs))
		for _, d := range snap.docs {
			docs = append(docs, d)
		}
		return docs, nil
	}

	seen := make(map[string]bool, len(scope))
	docs := make([]*docIndex, 0, len(scope))
	for _, id := range scope {
		if seen[id] {
			continue
		}
		seen[id] = true

		d, ok := snap.docs[id]
		if !ok {
			return nil, fmt.Errorf("%w: document %s is not indexed", domain.ErrIndexUnavailable, id)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func sortResults(results domain.RetrievalResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Chunk.Sequence != b.Chunk.Sequence {
			return a.Chunk.Sequence < b.Chunk.Sequence
		}
		if a.Chunk.DocumentID != b.Chunk.DocumentID {
			return a.Chunk.DocumentID < b.Chunk.DocumentID
		}
		return a.Chunk.ID < b.Chunk.ID
	})
}

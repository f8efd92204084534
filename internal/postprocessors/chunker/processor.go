// Package chunker provides a sliding-window text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits extracted units into overlapping chunks.
// Sizes are measured in characters (Unicode code points).
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Returns an error wrapping domain.ErrInvalidChunkConfig if the resulting
// size and overlap are out of range.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := Validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks that chunkSize is positive and overlap is in [0, chunkSize).
func Validate(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidChunkConfig, overlap, chunkSize)
	}
	return nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process cuts every unit into windows of chunkSize characters advancing by
// chunkSize-overlap. Chunks never span two units and never end strictly
// inside an atomic segment of a unit.
// Input chunks are ignored; this processor creates new chunks from the units.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, units []domain.ExtractedUnit,
	_ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	offset := 0

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("chunk %s: %w: %w", doc.ID, domain.ErrCancelled, err)
		}

		runes := []rune(unit.Text)
		for _, w := range p.windows(len(runes), unit.Boundaries) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Generation: doc.Generation,
				Content:    string(runes[w.start:w.end]),
				Start:      offset + w.start,
				End:        offset + w.end,
				Overlap:    w.overlap,
				Locator:    narrowLocator(unit.Locator, unit.Boundaries, w),
				Sequence:   len(chunks),
				Metadata:   make(map[string]any),
			})
		}

		offset += len(runes)
	}

	return chunks, nil
}

// window is a half-open rune range within a unit.
type window struct {
	start   int
	end     int
	overlap int
}

// windows computes the chunk ranges for a unit of n runes.
func (p *Processor) windows(n int, bounds []domain.Boundary) []window {
	if n == 0 {
		return nil
	}

	out := make([]window, 0, n/(p.chunkSize-p.overlap)+1)
	start, prevEnd := 0, 0

	for {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else if len(bounds) > 0 {
			end = snapToBoundary(bounds, n, max(start, prevEnd), end)
		}

		overlap := 0
		if len(out) > 0 {
			overlap = prevEnd - start
		}
		out = append(out, window{start: start, end: end, overlap: overlap})

		if end == n {
			return out
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start, prevEnd = next, end
	}
}

// snapToBoundary moves end off the inside of an atomic segment. It prefers
// the last segment end after floor; if there is none, it extends end to the
// close of the segment it falls in.
func snapToBoundary(bounds []domain.Boundary, n, floor, end int) int {
	// i is the first boundary at or after end.
	i := sort.Search(len(bounds), func(i int) bool { return bounds[i].Offset >= end })
	if i < len(bounds) && bounds[i].Offset == end {
		return end
	}

	if i > 0 && bounds[i-1].Offset > floor {
		return bounds[i-1].Offset
	}

	if i < len(bounds) {
		return bounds[i].Offset
	}
	return n
}

// narrowLocator restricts a row-addressed locator to the rows a window covers.
func narrowLocator(loc domain.Locator, bounds []domain.Boundary, w window) domain.Locator {
	if loc.Kind != domain.LocatorSheet || len(bounds) == 0 || bounds[0].Row == 0 {
		return loc
	}

	first := sort.Search(len(bounds), func(i int) bool { return bounds[i].Offset > w.start })
	last := sort.Search(len(bounds), func(i int) bool { return bounds[i].Offset >= w.end })
	if first >= len(bounds) {
		first = len(bounds) - 1
	}
	if last >= len(bounds) {
		last = len(bounds) - 1
	}

	loc.RowStart = bounds[first].Row
	loc.RowEnd = bounds[last].Row
	return loc
}

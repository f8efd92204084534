// Package delimited provides an Extractor for CSV and TSV tables.
// Every record is an atomic row so chunks never split a row of figures.
package delimited

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/textutil"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MIME types handled by this extractor.
const (
	MIMECSV = "text/csv"
	MIMETSV = "text/tab-separated-values"
)

// Extractor handles delimited tables.
type Extractor struct{}

// New creates a new delimited table extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMECSV, MIMETSV, "application/csv"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract returns the table as one sheet unit. Each record becomes a line of
// tab-separated cells with a row boundary at its end.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	raw := bytes.TrimPrefix(doc.Raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrCorruptInput, doc.DisplayName())
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if strings.HasPrefix(doc.MIMEType, MIMETSV) {
		r.Comma = '\t'
	}

	var (
		text   strings.Builder
		bounds []domain.Boundary
		offset int
		rows   int
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract %s: %w: %w", doc.DisplayName(), domain.ErrCancelled, err)
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
		}
		rows++
		// Rows are source line numbers: blank lines are skipped by the
		// reader and quoted cells may span lines.
		row, _ := r.FieldPos(0)

		line := joinCells(record)
		if line == "" {
			continue
		}
		line += "\n"

		text.WriteString(line)
		offset += utf8.RuneCountInString(line)
		bounds = append(bounds, domain.Boundary{Offset: offset, Row: row})
	}

	result := &driven.Extraction{
		Metadata: map[string]any{
			"title":  textutil.TitleFromName(doc.DisplayName()),
			"format": "table",
			"rows":   rows,
		},
	}
	if text.Len() > 0 {
		result.Units = []domain.ExtractedUnit{{
			Text:       text.String(),
			Locator:    domain.Locator{Kind: domain.LocatorSheet},
			Boundaries: bounds,
		}}
	}

	return result, nil
}

// joinCells trims cells, drops trailing empty cells, and joins with tabs.
// Returns "" for a row with no content.
func joinCells(record []string) string {
	cells := make([]string, len(record))
	for i, c := range record {
		cells[i] = textutil.CollapseSpaces(c)
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return strings.Join(cells, "\t")
}

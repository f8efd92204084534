// Package pdf provides an Extractor for PDF documents such as annual reports
// and results presentations. Each page becomes one unit so citations can
// point at "p. N".
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/text"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/textutil"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MIMEPDF is the PDF MIME type.
const MIMEPDF = "application/pdf"

// pageSeparator is appended to every page but the last.
const pageSeparator = "\n\n"

var pdfMagic = []byte("%PDF-")

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEPDF, "application/x-pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract returns one page unit per page that carries text.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The header may be preceded by a little junk.
	head := doc.Raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, pdfMagic) {
		return nil, fmt.Errorf("%w: %s has no PDF header", domain.ErrCorruptInput, doc.DisplayName())
	}

	var (
		units     []domain.ExtractedUnit
		pageCount int
	)

	err := textutil.WithTempFile(doc.Raw, ".pdf", func(path string) error {
		r, err := reader.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
		}
		defer r.Close()

		pageCount, err = r.PageCount()
		if err != nil {
			return fmt.Errorf("%w: %s: page tree: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
		}

		for i := 0; i < pageCount; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			page, err := r.GetPage(i)
			if err != nil {
				return fmt.Errorf("%w: %s: page %d: %v", domain.ErrCorruptInput, doc.DisplayName(), i+1, err)
			}
			fragments, err := r.ExtractTextFragments(page)
			if err != nil {
				return fmt.Errorf("%w: %s: page %d: %v", domain.ErrCorruptInput, doc.DisplayName(), i+1, err)
			}

			pageText := assembleLines(fragments)
			if pageText == "" {
				continue
			}
			units = append(units, domain.ExtractedUnit{
				Text:    pageText,
				Locator: domain.Locator{Kind: domain.LocatorPage, Page: i + 1},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(units)-1; i++ {
		units[i].Text += pageSeparator
	}

	return &driven.Extraction{
		Units: units,
		Metadata: map[string]any{
			"title":      textutil.TitleFromName(doc.DisplayName()),
			"format":     "pdf",
			"page_count": pageCount,
		},
	}, nil
}

// assembleLines orders fragments top to bottom, left to right, and joins
// fragments that share a baseline into one line.
func assembleLines(fragments []text.TextFragment) string {
	frags := make([]text.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return ""
	}

	// PDF y grows upwards.
	sort.SliceStable(frags, func(i, j int) bool {
		if !sameLine(frags[i], frags[j]) {
			return frags[i].Y > frags[j].Y
		}
		return frags[i].X < frags[j].X
	})

	var (
		lines []string
		line  strings.Builder
		prev  text.TextFragment
	)
	for i, f := range frags {
		if i > 0 && !sameLine(prev, f) {
			lines = append(lines, textutil.CollapseSpaces(line.String()))
			line.Reset()
		} else if i > 0 && f.X > prev.X+prev.Width+spaceWidth(prev) {
			line.WriteByte(' ')
		}
		line.WriteString(f.Text)
		prev = f
	}
	lines = append(lines, textutil.CollapseSpaces(line.String()))

	return strings.Join(lines, "\n")
}

// sameLine reports whether two fragments sit on the same baseline.
func sameLine(a, b text.TextFragment) bool {
	tolerance := math.Max(math.Max(a.Height, b.Height), math.Max(a.FontSize, b.FontSize)) / 2
	if tolerance == 0 {
		tolerance = 2
	}
	return math.Abs(a.Y-b.Y) <= tolerance
}

func spaceWidth(f text.TextFragment) float64 {
	if f.FontSize > 0 {
		return f.FontSize * 0.2
	}
	return 1
}

// Package spreadsheet provides an Extractor for XLSX workbooks such as
// financial statements and price histories. Each sheet becomes one unit and
// each row an atomic segment, so chunks cite "Sheet rows a-b".
package spreadsheet

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/tabula/xlsx"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/textutil"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MIMEXLSX is the Excel workbook MIME type.
const MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Extractor handles XLSX workbooks.
type Extractor struct{}

// New creates a new spreadsheet extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEXLSX}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract returns one sheet unit per non-empty sheet. Rows are rendered as
// tab-separated cells; empty rows are skipped but keep their numbering.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		units      []domain.ExtractedUnit
		sheetNames []string
	)

	err := textutil.WithTempFile(doc.Raw, ".xlsx", func(path string) error {
		r, err := xlsx.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
		}
		defer r.Close()

		sheetNames = r.SheetNames()
		for i := 0; i < r.SheetCount(); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			sheet, err := r.Sheet(i)
			if err != nil {
				return fmt.Errorf("%w: %s: sheet %d: %v", domain.ErrCorruptInput, doc.DisplayName(), i+1, err)
			}
			if unit, ok := sheetUnit(sheet); ok {
				units = append(units, unit)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &driven.Extraction{
		Units: units,
		Metadata: map[string]any{
			"title":       textutil.TitleFromName(doc.DisplayName()),
			"format":      "xlsx",
			"sheet_names": sheetNames,
		},
	}, nil
}

// sheetUnit renders a sheet with a row boundary after every line.
func sheetUnit(sheet *xlsx.Sheet) (domain.ExtractedUnit, bool) {
	var (
		b      strings.Builder
		bounds []domain.Boundary
		offset int
	)

	for i, row := range sheet.Rows {
		line := joinRow(row)
		if line == "" {
			continue
		}
		line += "\n"
		b.WriteString(line)
		offset += utf8.RuneCountInString(line)
		bounds = append(bounds, domain.Boundary{Offset: offset, Row: i + 1})
	}

	if b.Len() == 0 {
		return domain.ExtractedUnit{}, false
	}
	return domain.ExtractedUnit{
		Text:       b.String(),
		Locator:    domain.Locator{Kind: domain.LocatorSheet, Sheet: sheet.Name},
		Boundaries: bounds,
	}, true
}

// joinRow joins cell values with tabs, dropping trailing empty cells.
func joinRow(row []xlsx.Cell) string {
	cells := make([]string, len(row))
	for i := range row {
		cells[i] = textutil.CollapseSpaces(row[i].Value)
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return strings.Join(cells, "\t")
}

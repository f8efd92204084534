package domain

import (
	"fmt"
	"time"
)

// Document is an ingested research document.
// A document is immutable once ingested; ingesting again under the same ID
// supersedes it with a new generation.
type Document struct {
	// ID is the stable identifier, supplied by the caller or generated.
	ID string

	// Name is the display name used in citations (usually the file name).
	Name string

	// MIMEType is the declared content type of Raw.
	MIMEType string

	// Raw holds the original bytes.
	Raw []byte

	// Content is the extracted text: the concatenation of every unit's text.
	Content string

	// Ticker optionally associates the document with a JSE ticker (e.g. "NPN").
	Ticker string

	// Generation increases every time the ID is ingested.
	Generation int64

	// Metadata holds extractor-specific attributes (page count, sheets, title).
	Metadata map[string]any

	// IngestedAt is when this generation was ingested.
	IngestedAt time.Time
}

// DisplayName returns the name shown to users, falling back to the ID.
func (d *Document) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// LocatorKind identifies which structural element a locator points at.
type LocatorKind string

// Locator kinds.
const (
	// LocatorDocument addresses a whole unstructured document.
	LocatorDocument LocatorKind = "document"

	// LocatorPage addresses a PDF page.
	LocatorPage LocatorKind = "page"

	// LocatorSheet addresses a spreadsheet sheet or CSV table, optionally
	// narrowed to a row range.
	LocatorSheet LocatorKind = "sheet"

	// LocatorSection addresses a headed section of a text document.
	LocatorSection LocatorKind = "section"
)

// Locator points at the place inside a document a span of text came from.
type Locator struct {
	Kind LocatorKind

	// Page is 1-based. Zero when not applicable.
	Page int

	// Sheet is the sheet or table name.
	Sheet string

	// RowStart and RowEnd are 1-based and inclusive. Zero when not applicable.
	RowStart int
	RowEnd   int

	// Section is the heading text of the section.
	Section string
}

// String renders the locator for citations, e.g. "p. 3" or "Income rows 4-9".
func (l Locator) String() string {
	switch l.Kind {
	case LocatorPage:
		return fmt.Sprintf("p. %d", l.Page)
	case LocatorSheet:
		name := l.Sheet
		if name == "" {
			name = "table"
		}
		switch {
		case l.RowStart == 0:
			return name
		case l.RowStart == l.RowEnd:
			return fmt.Sprintf("%s row %d", name, l.RowStart)
		default:
			return fmt.Sprintf("%s rows %d-%d", name, l.RowStart, l.RowEnd)
		}
	case LocatorSection:
		if l.Section == "" {
			return "section"
		}
		return "§ " + l.Section
	default:
		return "document"
	}
}

// Boundary marks the end of an atomic segment (such as a table row) inside a
// unit. The chunker never places a chunk edge strictly inside a segment.
type Boundary struct {
	// Offset is the rune offset within the unit text where the segment ends.
	Offset int

	// Row is the 1-based row number of the segment, if it is a row.
	Row int
}

// ExtractedUnit is one structural span of extracted text.
// Units are ordered; concatenating their Text yields the document Content.
type ExtractedUnit struct {
	Text    string
	Locator Locator

	// Boundaries lists atomic segment ends in ascending Offset order.
	// Empty means the unit may be split anywhere.
	Boundaries []Boundary
}

// Chunk is a retrievable window of a document's extracted text.
type Chunk struct {
	// ID is the unique chunk identifier.
	ID string

	// DocumentID references the source document.
	DocumentID string

	// Generation is the document generation this chunk belongs to.
	Generation int64

	// Content is the chunk text.
	Content string

	// Start and End are rune offsets into the document Content, half-open.
	Start int
	End   int

	// Overlap is the number of leading runes shared with the previous chunk.
	// Content with the first Overlap runes removed, concatenated in Sequence
	// order, reproduces the document Content exactly.
	Overlap int

	// Locator is inherited from the unit the chunk was cut from.
	Locator Locator

	// Sequence is the 0-based position of the chunk within the document.
	Sequence int

	// Metadata holds additional chunk attributes.
	Metadata map[string]any
}

// Len returns the chunk length in runes.
func (c *Chunk) Len() int {
	return c.End - c.Start
}

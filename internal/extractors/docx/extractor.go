// Package docx provides an Extractor for Word (Office Open XML) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/textutil"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MIMEDOCX is the Word document MIME type.
const MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEDOCX}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract reads word/document.xml and returns one unit per headed section.
// Paragraphs styled as headings open a new section.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(doc.Raw), int64(len(doc.Raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a zip archive: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
	}

	body, err := readFile(reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
	}

	var parsed documentXML
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: parse document.xml: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
	}

	units := buildUnits(parsed.Body.Paragraphs)

	return &driven.Extraction{
		Units: units,
		Metadata: map[string]any{
			"title":      extractTitle(reader, doc.DisplayName()),
			"format":     "docx",
			"paragraphs": len(parsed.Body.Paragraphs),
		},
	}, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func (p paragraph) isHeading() bool {
	style := strings.ToLower(p.Props.Style.Val)
	return strings.HasPrefix(style, "heading") || style == "title"
}

// buildUnits groups paragraphs into sections, one line per paragraph.
func buildUnits(paragraphs []paragraph) []domain.ExtractedUnit {
	type section struct {
		heading string
		lines   []string
	}
	sections := []*section{{}}

	for _, p := range paragraphs {
		text := p.text()
		if text == "" {
			continue
		}
		if p.isHeading() {
			sections = append(sections, &section{heading: text})
		}
		cur := sections[len(sections)-1]
		cur.lines = append(cur.lines, text)
	}

	var units []domain.ExtractedUnit
	for _, s := range sections {
		if len(s.lines) == 0 {
			continue
		}
		loc := domain.Locator{Kind: domain.LocatorDocument}
		if s.heading != "" {
			loc = domain.Locator{Kind: domain.LocatorSection, Section: s.heading}
		}
		units = append(units, domain.ExtractedUnit{Text: strings.Join(s.lines, "\n"), Locator: loc})
	}
	for i := 0; i < len(units)-1; i++ {
		units[i].Text += "\n\n"
	}
	return units
}

func readFile(reader *zip.Reader, name string) ([]byte, error) {
	f, err := reader.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml or falls back to the file name.
func extractTitle(reader *zip.Reader, name string) string {
	if content, err := readFile(reader, "docProps/core.xml"); err == nil {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}
	return textutil.TitleFromName(name)
}

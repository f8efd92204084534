package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/textutil"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Generic MIME extractor, higher than plaintext
}

// blockElements end a line of text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "li": true, "tr": true,
	"blockquote": true, "pre": true, "table": true, "section": true,
	"article": true, "h4": true, "h5": true, "h6": true, "ul": true, "ol": true,
	"header": true, "footer": true,
}

// sectionHeadings open a new section.
var sectionHeadings = map[string]bool{"h1": true, "h2": true, "h3": true}

// Extract returns one unit per headed section of the body.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptInput, doc.DisplayName(), err)
	}

	title := textutil.CollapseSpaces(page.Find("title").First().Text())
	if title == "" {
		title = textutil.TitleFromName(doc.DisplayName())
	}

	page.Find("script, style, noscript, svg, template, head").Remove()

	w := &sectionWriter{}
	w.open("")
	for _, n := range page.Find("body").Nodes {
		w.walk(n)
	}

	var units []domain.ExtractedUnit
	for _, s := range w.sections {
		text := cleanLines(s.body.String())
		if text == "" {
			continue
		}
		loc := domain.Locator{Kind: domain.LocatorDocument}
		if s.heading != "" {
			loc = domain.Locator{Kind: domain.LocatorSection, Section: s.heading}
		}
		units = append(units, domain.ExtractedUnit{Text: text, Locator: loc})
	}
	for i := 0; i < len(units)-1; i++ {
		units[i].Text += "\n\n"
	}

	return &driven.Extraction{
		Units: units,
		Metadata: map[string]any{
			"title":    title,
			"format":   "html",
			"sections": len(units),
		},
	}, nil
}

type section struct {
	heading string
	body    strings.Builder
}

// sectionWriter accumulates text in document order, split at headings.
type sectionWriter struct {
	sections []*section
}

func (w *sectionWriter) open(heading string) {
	w.sections = append(w.sections, &section{heading: heading})
}

func (w *sectionWriter) current() *strings.Builder {
	return &w.sections[len(w.sections)-1].body
}

func (w *sectionWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.current().WriteString(n.Data)
		return
	case html.ElementNode:
		if sectionHeadings[n.Data] {
			heading := textutil.CollapseSpaces(goquery.NewDocumentFromNode(n).Text())
			w.open(heading)
			w.current().WriteString(heading)
			w.current().WriteByte('\n')
			return
		}
		if n.Data == "td" || n.Data == "th" {
			w.current().WriteByte('\t')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] {
		w.current().WriteByte('\n')
	}
}

// cleanLines trims every line, collapses inner whitespace, and drops blank lines.
func cleanLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		cells := strings.Split(line, "\t")
		kept := cells[:0]
		for _, c := range cells {
			if c = textutil.CollapseSpaces(c); c != "" {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, "\t"))
		}
	}
	return strings.Join(out, "\n")
}

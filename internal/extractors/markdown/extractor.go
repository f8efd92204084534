// Package markdown provides an Extractor for Markdown documents.
// Each heading opens a section unit so citations can point at "§ Heading".
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/textutil"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Generic MIME extractor, higher than plaintext
}

// Pre-compiled regular expressions for markdown stripping.
var (
	headingLine  = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.*?)\s*#*\s*$`)
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*)([^*_\n]+)(\*\*|__|\*)`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// section is a heading and the raw lines beneath it.
type section struct {
	heading string
	body    strings.Builder
}

// Extract splits the document at headings and returns one unit per
// non-empty section. Text before the first heading is a document unit.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, ok := textutil.DecodeText(doc.Raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrCorruptInput, doc.DisplayName())
	}

	sections := splitSections(text)

	var units []domain.ExtractedUnit
	for _, s := range sections {
		stripped := stripMarkdown(s.body.String())
		if stripped == "" {
			continue
		}

		loc := domain.Locator{Kind: domain.LocatorDocument}
		if s.heading != "" {
			loc = domain.Locator{Kind: domain.LocatorSection, Section: s.heading}
		}
		units = append(units, domain.ExtractedUnit{Text: stripped, Locator: loc})
	}

	// Separate sections so the concatenated content keeps paragraph breaks.
	for i := 0; i < len(units)-1; i++ {
		units[i].Text += "\n\n"
	}

	return &driven.Extraction{
		Units: units,
		Metadata: map[string]any{
			"title":    extractMarkdownTitle(sections, doc.DisplayName()),
			"format":   "markdown",
			"sections": len(units),
		},
	}, nil
}

// splitSections groups lines under the heading that precedes them.
// Headings inside fenced code blocks are ignored.
func splitSections(text string) []*section {
	current := &section{}
	sections := []*section{current}
	inFence := false

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}

		if !inFence {
			if m := headingLine.FindStringSubmatch(line); m != nil {
				current = &section{heading: m[2]}
				sections = append(sections, current)
			}
		}

		current.body.WriteString(line)
		current.body.WriteByte('\n')
	}

	return sections
}

// extractMarkdownTitle returns the first H1 heading or falls back to the file name.
func extractMarkdownTitle(sections []*section, name string) string {
	for _, s := range sections {
		if s.heading == "" {
			continue
		}
		first, _, _ := strings.Cut(s.body.String(), "\n")
		if m := headingLine.FindStringSubmatch(first); m != nil && len(m[1]) == 1 {
			return s.heading
		}
	}
	return textutil.TitleFromName(name)
}

// stripMarkdown removes common markdown formatting for plain text content.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = multiNewline.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}

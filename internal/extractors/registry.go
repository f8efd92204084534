package extractors

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/delimited"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/docx"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/pdf"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/spreadsheet"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches documents to the highest-priority extractor for their
// MIME type.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor to the registry.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors = append(r.extractors, extractor)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Extract dispatches to the best extractor for the document's MIME type.
// A document without a MIME type is matched on its name and content.
// Returns domain.ErrUnsupportedFormat if none matches.
func (r *Registry) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	mimeType := r.ResolveMIME(doc.Name, doc.MIMEType, doc.Raw)
	extractor := r.lookup(mimeType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, doc.MIMEType)
	}

	return extractor.Extract(ctx, doc)
}

// ResolveMIME returns the normalised declared type, or the detected type
// when none is declared.
func (r *Registry) ResolveMIME(name, mimeType string, content []byte) string {
	if t := NormaliseMIME(mimeType); t != "" {
		return t
	}
	return DetectMIME(name, content)
}

// Supports reports whether a MIME type can be extracted.
func (r *Registry) Supports(mimeType string) bool {
	return r.lookup(NormaliseMIME(mimeType)) != nil
}

// SupportedMIMETypes returns all MIME types that can be extracted, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types
}

func (r *Registry) lookup(mimeType string) driven.Extractor {
	if mimeType == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if t == mimeType {
				return e
			}
		}
	}
	return nil
}

// NormaliseMIME lower-cases a MIME type and strips its parameters.
func NormaliseMIME(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	if media, _, err := mime.ParseMediaType(mimeType); err == nil {
		return media
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// extensionTypes covers formats the system MIME table often lacks.
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".csv":      delimited.MIMECSV,
	".tsv":      delimited.MIMETSV,
	".pdf":      pdf.MIMEPDF,
	".htm":      "text/html",
	".html":     "text/html",
	".xlsx":     MIMEXLSX,
	".docx":     MIMEDOCX,
}

// Well-known Office Open XML MIME types.
const (
	MIMEXLSX = spreadsheet.MIMEXLSX
	MIMEDOCX = docx.MIMEDOCX
)

// DetectMIME infers a MIME type from a file name, falling back to content
// sniffing. Returns "" when nothing useful is found.
func DetectMIME(name string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return NormaliseMIME(t)
	}
	if len(content) == 0 {
		return ""
	}

	sniffed := NormaliseMIME(http.DetectContentType(content))
	if sniffed == "application/octet-stream" || sniffed == "application/zip" {
		return ""
	}
	return sniffed
}

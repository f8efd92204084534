package extractors

import (
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/delimited"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/docx"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/html"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/markdown"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/pdf"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/plaintext"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/spreadsheet"
)

// RegisterDefaults registers all built-in extractors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(delimited.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	r.Register(spreadsheet.New())
}

// NewDefaultRegistry returns a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

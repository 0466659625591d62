package port

import (
	"context"

	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
)

// ExtractInput carries the data one extraction pass needs, keyed off the
// page's resolved classification.
type ExtractInput struct {
	OCRText      string
	PageImage    []byte
	ContentType  string
	ClassName    string
	CustomerType domain.CustomerType
	DocType      *doctype.DocumentType
}

// EntityExtractor abstracts one LLM extraction source producing a flat
// entity list for a page.
type EntityExtractor interface {
	Extract(ctx context.Context, input ExtractInput) ([]domain.Entity, error)
	// Model identifies the extraction source for provenance tagging.
	Model() string
}

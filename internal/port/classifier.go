package port

import (
	"context"

	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
)

// ClassifyInput carries the data one classification pass needs: the OCR
// text of the page, the candidate document types, and the pass level
// (recorded in the vote's technique label).
type ClassifyInput struct {
	OCRText      string
	PageImage    []byte
	ContentType  string
	Level        int
	CustomerType domain.CustomerType
	Types        []doctype.DocumentType
}

// PageClassifier abstracts one LLM classification pass over a page.
type PageClassifier interface {
	Classify(ctx context.Context, input ClassifyInput) (domain.ClassificationVote, error)
}

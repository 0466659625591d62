package port

import "context"

// OCRInput carries one page image for text extraction.
type OCRInput struct {
	Image       []byte
	ContentType string
	PageNumber  int
}

// OCRResult is the text read from one page. Empty text is a valid result
// for a blank page, not an error.
type OCRResult struct {
	Text string
}

// OCRProvider abstracts the external OCR service.
type OCRProvider interface {
	ExtractText(ctx context.Context, input OCRInput) (*OCRResult, error)
}

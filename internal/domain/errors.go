package domain

import "errors"

var (
	ErrInvalidPageNumber     = errors.New("page number outside document range")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrEmptyDocument         = errors.New("document has no pages")
	ErrClassificationPending = errors.New("page classification has not been resolved")
	ErrExtractionPending     = errors.New("page extraction has not been unified")
	ErrOCRCredential         = errors.New("ocr provider rejected credentials")
	ErrOCRUnavailable        = errors.New("ocr provider unavailable")
	ErrUnknownDocumentType   = errors.New("unknown document type")
)

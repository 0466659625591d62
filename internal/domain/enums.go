package domain

import "strings"

// FileType represents the allowed file types for document processing.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeTIFF FileType = "tiff"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"tif":  FileTypeTIFF,
	"tiff": FileTypeTIFF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/tiff":      FileTypeTIFF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// ContentTypeFor maps a FileType to the MIME type used on outbound
// OCR and LLM payloads.
var ContentTypeFor = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeTIFF: "image/tiff",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
}

// CustomerType tags whether an entity or document type applies to
// individual customers, non-individual customers, or both.
type CustomerType string

const (
	CustomerIndividual    CustomerType = "individual"
	CustomerNonIndividual CustomerType = "non-individual"
	CustomerBoth          CustomerType = "both"
)

// NormalizeCustomerType lower-cases and canonicalizes the customer-type
// labels that appear in template payloads ("Individual", "Non-Individual").
func NormalizeCustomerType(raw string) CustomerType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "individual":
		return CustomerIndividual
	case "non-individual", "non individual", "nonindividual":
		return CustomerNonIndividual
	case "both":
		return CustomerBoth
	default:
		return CustomerType(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// AppliesTo reports whether an entity with this applicability is a
// candidate for a page of the given customer type.
func (t CustomerType) AppliesTo(customer CustomerType) bool {
	return t == CustomerBoth || t == customer
}

// Page statuses surfaced on included/excluded page records.
const (
	StatusDuplicateClass = "duplicate_class"
	StatusVisaCard       = "this is Visa card"
	StatusLowCoverage    = "low_entity_coverage"
	StatusUnprocessed    = "unprocessed"
)

// SourceCustomLogic marks entities synthesized by the inclusion pass
// rather than returned by an extraction model.
const SourceCustomLogic = "custom_logic"

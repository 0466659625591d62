package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ClassificationVote is one model's opinion of a page's document-type
// label. Immutable once recorded.
type ClassificationVote struct {
	ClassName string  `json:"class_name"`
	Score     float64 `json:"score"`
	Technique string  `json:"technique"`
}

// ResolvedClassification is the single authoritative classification for a
// page after voting. When the first two votes disagree the primary vote
// wins with its score halved, ManualCheck set, and the runner-up retained.
type ResolvedClassification struct {
	ClassificationVote
	ManualCheck     bool                `json:"manual_check,omitempty"`
	OtherPrediction *ClassificationVote `json:"other_prediction,omitempty"`
}

// Page is one image/text unit within a multi-page document, 1-indexed.
// Votes and extraction sources are appended in insertion order; the
// resolved fields stay nil until the unification steps run.
type Page struct {
	Number       int
	OCRText      []string
	Votes        []ClassificationVote
	Resolved     *ResolvedClassification
	Sources      [][]Entity
	Unified      []Entity
	CustomerType CustomerType

	unifiedSet bool
}

// HasUnified reports whether reconciliation has produced the unified
// entity list. An empty unified list is a valid outcome, so a separate
// flag distinguishes "ran with no entities" from "not run".
func (p *Page) HasUnified() bool { return p.unifiedSet }

// PageRecord is the per-page output surface consumed by the caller.
type PageRecord struct {
	Classification ResolvedClassification `json:"classification"`
	Extraction     []Entity               `json:"extraction"`
	Status         string                 `json:"status,omitempty"`
}

// DocumentResult pairs the accepted per-page records with the audit trail
// of pages the inclusion pass rejected.
type DocumentResult struct {
	Included map[int]PageRecord `json:"included"`
	Excluded map[int]PageRecord `json:"excluded"`
}

// Document owns all pages of one uploaded file. Page numbers are exactly
// 1..NumPages with no gaps; NumPages is fixed at construction.
type Document struct {
	ID       uuid.UUID
	Filename string
	FileType FileType
	NumPages int
	pages    []*Page
}

// NewDocument creates a Document with numPages empty pages.
func NewDocument(filename string, fileType FileType, numPages int) (*Document, error) {
	if numPages < 1 {
		return nil, ErrEmptyDocument
	}
	pages := make([]*Page, numPages)
	for i := range pages {
		pages[i] = &Page{Number: i + 1}
	}
	return &Document{
		ID:       uuid.New(),
		Filename: filename,
		FileType: fileType,
		NumPages: numPages,
		pages:    pages,
	}, nil
}

// Page returns the page with the given 1-based number.
func (d *Document) Page(number int) (*Page, error) {
	if number < 1 || number > d.NumPages {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPageNumber, number, d.NumPages)
	}
	return d.pages[number-1], nil
}

// Pages returns all pages in ascending page-number order.
func (d *Document) Pages() []*Page {
	return d.pages
}

// AddOCRText appends one OCR pass result to a page. An empty string is a
// valid blank-page result.
func (d *Document) AddOCRText(number int, text string) error {
	p, err := d.Page(number)
	if err != nil {
		return err
	}
	p.OCRText = append(p.OCRText, text)
	return nil
}

// AddVote appends a classification vote to a page during the
// classification phase.
func (d *Document) AddVote(number int, vote ClassificationVote) error {
	p, err := d.Page(number)
	if err != nil {
		return err
	}
	p.Votes = append(p.Votes, vote)
	return nil
}

// SetResolvedClassification records the voting outcome for a page.
func (d *Document) SetResolvedClassification(number int, resolved *ResolvedClassification) error {
	p, err := d.Page(number)
	if err != nil {
		return err
	}
	p.Resolved = resolved
	return nil
}

// AddEntitySource appends one extractor's entity list to a page. Source
// order is significant: index 0 is the primary source, index 1 the
// secondary.
func (d *Document) AddEntitySource(number int, entities []Entity) error {
	p, err := d.Page(number)
	if err != nil {
		return err
	}
	p.Sources = append(p.Sources, entities)
	return nil
}

// SetUnifiedEntities records the reconciled entity list for a page.
func (d *Document) SetUnifiedEntities(number int, entities []Entity) error {
	p, err := d.Page(number)
	if err != nil {
		return err
	}
	p.Unified = entities
	p.unifiedSet = true
	return nil
}

// SetCustomerType records the derived customer-type tag for a page.
func (d *Document) SetCustomerType(number int, customerType CustomerType) error {
	p, err := d.Page(number)
	if err != nil {
		return err
	}
	p.CustomerType = customerType
	return nil
}

// Package pipeline orchestrates the per-document processing flow: OCR,
// classification voting, two-source extraction, reconciliation and the
// document-wide inclusion pass.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"kycdocs/internal/docfile"
	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
	"kycdocs/internal/format"
	"kycdocs/internal/port"
	"kycdocs/internal/unify"
)

// Pipeline wires the stage collaborators for document processing. The
// secondary classifier and extractor are optional; without them voting
// degenerates to a single vote and reconciliation to an unchecked
// primary list.
type Pipeline struct {
	ocr                 port.OCRProvider
	primaryClassifier   port.PageClassifier
	secondaryClassifier port.PageClassifier
	primaryExtractor    port.EntityExtractor
	secondaryExtractor  port.EntityExtractor
	table               *doctype.Table
	policy              *unify.InclusionPolicy
	concurrency         int
}

// Options carries the collaborators for New. Secondary fields may be nil.
type Options struct {
	OCR                 port.OCRProvider
	PrimaryClassifier   port.PageClassifier
	SecondaryClassifier port.PageClassifier
	PrimaryExtractor    port.EntityExtractor
	SecondaryExtractor  port.EntityExtractor
	Table               *doctype.Table
	PageConcurrency     int
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	concurrency := opts.PageConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		ocr:                 opts.OCR,
		primaryClassifier:   opts.PrimaryClassifier,
		secondaryClassifier: opts.SecondaryClassifier,
		primaryExtractor:    opts.PrimaryExtractor,
		secondaryExtractor:  opts.SecondaryExtractor,
		table:               opts.Table,
		policy:              unify.NewInclusionPolicy(opts.Table),
		concurrency:         concurrency,
	}
}

// ProcessDocument runs the full flow for one uploaded file against the
// configured document-type table. Pages are processed concurrently up to
// the configured limit; a page whose OCR or LLM calls all fail is kept as
// an unprocessed placeholder rather than failing the document. The
// inclusion pass runs once, sequentially, after every page has settled.
func (p *Pipeline) ProcessDocument(ctx context.Context, file *docfile.File, customer domain.CustomerType) (*domain.Document, *domain.DocumentResult, error) {
	return p.process(ctx, file, customer, p.table, p.policy)
}

// ProcessDocumentWith runs the flow against a caller-supplied table,
// shadowing the configured one for this document only.
func (p *Pipeline) ProcessDocumentWith(ctx context.Context, file *docfile.File, customer domain.CustomerType, table *doctype.Table) (*domain.Document, *domain.DocumentResult, error) {
	return p.process(ctx, file, customer, table, unify.NewInclusionPolicy(table))
}

func (p *Pipeline) process(ctx context.Context, file *docfile.File, customer domain.CustomerType, table *doctype.Table, policy *unify.InclusionPolicy) (*domain.Document, *domain.DocumentResult, error) {
	doc, err := domain.NewDocument(file.Filename, file.Type, file.NumPages)
	if err != nil {
		return nil, nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for n := 1; n <= file.NumPages; n++ {
		number := n
		g.Go(func() error {
			return p.processPage(ctx, doc, file, number, customer, table)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("processing %s: %w", file.Filename, err)
	}

	return doc, policy.Apply(doc), nil
}

// processPage runs OCR, classification and extraction for one page.
// Stage failures are logged and degrade the page; only context
// cancellation propagates as an error.
func (p *Pipeline) processPage(ctx context.Context, doc *domain.Document, file *docfile.File, number int, customer domain.CustomerType, table *doctype.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.SetCustomerType(number, customer); err != nil {
		return err
	}

	payload, err := file.PagePayload(number)
	if err != nil {
		log.Printf("pipeline: page %d payload failed: %v", number, err)
		return nil
	}
	contentType := file.ContentType()

	ocrText := ""
	ocrResult, err := p.ocr.ExtractText(ctx, port.OCRInput{
		Image:       payload,
		ContentType: contentType,
		PageNumber:  number,
	})
	if err != nil {
		log.Printf("pipeline: page %d OCR failed: %v", number, err)
	} else {
		ocrText = ocrResult.Text
	}
	if err := doc.AddOCRText(number, ocrText); err != nil {
		return err
	}

	resolved := p.classifyPage(ctx, doc, number, ocrText, payload, contentType, customer, table)
	if resolved == nil {
		return nil
	}
	if err := doc.SetResolvedClassification(number, resolved); err != nil {
		return err
	}

	return p.extractPage(ctx, doc, number, ocrText, payload, contentType, customer, resolved.ClassName, table)
}

// classifyPage collects up to two votes and resolves them. A page where
// every classifier fails stays unresolved.
func (p *Pipeline) classifyPage(ctx context.Context, doc *domain.Document, number int, ocrText string, payload []byte, contentType string, customer domain.CustomerType, table *doctype.Table) *domain.ResolvedClassification {
	input := port.ClassifyInput{
		OCRText:      ocrText,
		PageImage:    payload,
		ContentType:  contentType,
		CustomerType: customer,
		Types:        table.Types(),
	}

	var votes []domain.ClassificationVote
	input.Level = 1
	if vote, err := p.primaryClassifier.Classify(ctx, input); err != nil {
		log.Printf("pipeline: page %d primary classification failed: %v", number, err)
	} else {
		votes = append(votes, vote)
	}
	if p.secondaryClassifier != nil {
		input.Level = 2
		if vote, err := p.secondaryClassifier.Classify(ctx, input); err != nil {
			log.Printf("pipeline: page %d secondary classification failed: %v", number, err)
		} else {
			votes = append(votes, vote)
		}
	}

	for _, vote := range votes {
		if err := doc.AddVote(number, vote); err != nil {
			log.Printf("pipeline: page %d vote rejected: %v", number, err)
		}
	}
	return unify.ResolveVotes(votes)
}

// extractPage runs the primary and optional secondary extraction passes,
// formats both, and reconciles them into the page's unified entity list.
// A class without a document-type row gets an empty unified list so the
// inclusion pass can still emit the page.
func (p *Pipeline) extractPage(ctx context.Context, doc *domain.Document, number int, ocrText string, payload []byte, contentType string, customer domain.CustomerType, className string, table *doctype.Table) error {
	dt, ok := table.Lookup(className)
	if !ok {
		log.Printf("pipeline: page %d classified as %q, no template row", number, className)
		return doc.SetUnifiedEntities(number, []domain.Entity{})
	}

	input := port.ExtractInput{
		OCRText:      ocrText,
		PageImage:    payload,
		ContentType:  contentType,
		ClassName:    className,
		CustomerType: customer,
		DocType:      dt,
	}

	primary, err := p.primaryExtractor.Extract(ctx, input)
	if err != nil {
		log.Printf("pipeline: page %d primary extraction failed: %v", number, err)
		primary = []domain.Entity{}
	}
	primary = format.Entities(primary)
	if err := doc.AddEntitySource(number, primary); err != nil {
		return err
	}

	var secondary []domain.Entity
	secondaryModel := ""
	if p.secondaryExtractor != nil {
		secondaryModel = p.secondaryExtractor.Model()
		secondary, err = p.secondaryExtractor.Extract(ctx, input)
		if err != nil {
			log.Printf("pipeline: page %d secondary extraction failed: %v", number, err)
			secondary = nil
		} else {
			secondary = format.Entities(secondary)
			if err := doc.AddEntitySource(number, secondary); err != nil {
				return err
			}
		}
	}

	return doc.SetUnifiedEntities(number, unify.Reconcile(primary, secondary, secondaryModel))
}

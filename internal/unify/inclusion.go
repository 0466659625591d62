package unify

import (
	"log"
	"strings"
	"unicode/utf8"

	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
	"kycdocs/internal/format"
)

const canonicalIDLength = 15

// seenCategories is the running state of one inclusion pass: categories
// that allow at most one accepted page per document. Threaded explicitly
// through the pass so alternate policies stay testable side by side.
type seenCategories struct {
	emiratesID bool
	passport   bool
}

// InclusionPolicy runs once, document-wide, after every page has a
// resolved classification and a unified entity list. It decides per page
// which entities are exposed downstream and applies the document-type
// specific structural rules. The pass is ordered: duplicate detection on
// later pages depends on earlier accept decisions, so it must not be
// parallelized across pages.
type InclusionPolicy struct {
	table *doctype.Table
}

// NewInclusionPolicy creates an InclusionPolicy backed by a document-type
// configuration table.
func NewInclusionPolicy(table *doctype.Table) *InclusionPolicy {
	return &InclusionPolicy{table: table}
}

// Apply walks pages in ascending page-number order and splits them into
// the accepted payload and the excluded audit trail. Every page number in
// 1..NumPages appears in Included, if only as a status placeholder.
func (p *InclusionPolicy) Apply(doc *domain.Document) *domain.DocumentResult {
	result := &domain.DocumentResult{
		Included: make(map[int]domain.PageRecord, doc.NumPages),
		Excluded: make(map[int]domain.PageRecord),
	}
	var seen seenCategories

	for _, page := range doc.Pages() {
		if page.Resolved == nil {
			// Never classified: keep the page visible, flagged.
			result.Included[page.Number] = domain.PageRecord{
				Extraction: []domain.Entity{},
				Status:     domain.StatusUnprocessed,
			}
			continue
		}

		entities := domain.CloneEntities(page.Unified)
		if entities == nil {
			entities = []domain.Entity{}
		}

		switch strings.ToLower(page.Resolved.ClassName) {
		case doctype.ClassEmiratesID:
			p.applyEmiratesID(page, entities, &seen, result)
		case doctype.ClassTradeLicense:
			p.applyTradeLicense(page, entities, result)
		case doctype.ClassPassport:
			p.applyPassport(page, entities, &seen, result)
		default:
			result.Included[page.Number] = domain.PageRecord{
				Classification: *page.Resolved,
				Extraction:     entities,
			}
		}
	}

	return result
}

func (p *InclusionPolicy) applyEmiratesID(page *domain.Page, entities []domain.Entity, seen *seenCategories, result *domain.DocumentResult) {
	cls := *page.Resolved

	if seen.emiratesID {
		result.Excluded[page.Number] = domain.PageRecord{
			Classification: cls,
			Extraction:     entities,
			Status:         domain.StatusDuplicateClass,
		}
		result.Included[page.Number] = domain.PageRecord{
			Classification: cls,
			Extraction:     []domain.Entity{},
			Status:         domain.StatusDuplicateClass,
		}
		return
	}

	idIdx := -1
	for i := range entities {
		switch entities[i].BackendEntityKey {
		case "country_of_residency":
			// Emirates ID implies UAE residency by construction.
			entities[i].EntityValue = domain.Value("AE")
		case "emirates_id_number":
			idIdx = i
		}
	}

	if idIdx == -1 {
		result.Included[page.Number] = domain.PageRecord{Classification: cls, Extraction: entities}
		seen.emiratesID = true
		return
	}

	raw := entities[idIdx].EntityValue.Raw
	switch rawLen := utf8.RuneCountInString(raw); {
	case rawLen > canonicalIDLength:
		formatted := format.IDNumber(raw)
		log.Printf("unify.InclusionPolicy: page %d emirates_id_number %q formatted to %q", page.Number, raw, formatted)
		entities[idIdx].EntityValue = domain.Value(formatted)
		result.Included[page.Number] = domain.PageRecord{Classification: cls, Extraction: entities}
		seen.emiratesID = true

	case rawLen == canonicalIDLength:
		// Already canonical; the ID entity itself is removed so the UI
		// does not re-surface a value it has no correction to offer on.
		filtered := make([]domain.Entity, 0, len(entities)-1)
		filtered = append(filtered, entities[:idIdx]...)
		filtered = append(filtered, entities[idIdx+1:]...)
		result.Included[page.Number] = domain.PageRecord{Classification: cls, Extraction: filtered}
		seen.emiratesID = true

	default:
		// A short ID value on this class means the page is most likely a
		// visa card misclassified as an Emirates ID, not a retryable read.
		result.Excluded[page.Number] = domain.PageRecord{
			Classification: cls,
			Extraction:     entities,
			Status:         domain.StatusVisaCard,
		}
		result.Included[page.Number] = domain.PageRecord{
			Classification: cls,
			Extraction:     []domain.Entity{},
			Status:         domain.StatusVisaCard,
		}
	}
}

func (p *InclusionPolicy) applyTradeLicense(page *domain.Page, entities []domain.Entity, result *domain.DocumentResult) {
	cls := *page.Resolved

	var industrySector, legalStructure string
	industryExists, legalExists := false, false
	for _, e := range entities {
		switch e.BackendEntityKey {
		case "industry_sector":
			industryExists = true
			industrySector = strings.TrimSpace(e.EntityValue.Raw)
		case "legal_structure":
			legalExists = true
			legalStructure = strings.TrimSpace(e.EntityValue.Raw)
		}
	}

	for i := range entities {
		switch entities[i].BackendEntityKey {
		case "legal_structure":
			// Industry sector is treated as ground truth when the two
			// fields are both present and conflicting.
			if industrySector != "" && industrySector != legalStructure {
				log.Printf("unify.InclusionPolicy: page %d overwriting legal_structure %q with industry_sector %q", page.Number, legalStructure, industrySector)
				entities[i].EntityValue = domain.Value(industrySector)
			}
		case "industry_sector":
			if industrySector == "" && legalStructure != "" {
				log.Printf("unify.InclusionPolicy: page %d filling blank industry_sector from legal_structure %q", page.Number, legalStructure)
				entities[i].EntityValue = domain.Value(legalStructure)
			}
		}
	}

	if !industryExists && legalStructure != "" {
		entities = append(entities, p.synthesizeEntity("industry_sector", legalStructure))
	}
	if !legalExists && industrySector != "" {
		entities = append(entities, p.synthesizeEntity("legal_structure", industrySector))
	}

	// Trade license pages are never excluded by this branch.
	result.Included[page.Number] = domain.PageRecord{Classification: cls, Extraction: entities}
}

func (p *InclusionPolicy) applyPassport(page *domain.Page, entities []domain.Entity, seen *seenCategories, result *domain.DocumentResult) {
	cls := *page.Resolved

	if seen.passport {
		result.Excluded[page.Number] = domain.PageRecord{
			Classification: cls,
			Extraction:     entities,
			Status:         domain.StatusDuplicateClass,
		}
		result.Included[page.Number] = domain.PageRecord{
			Classification: cls,
			Extraction:     []domain.Entity{},
			Status:         domain.StatusDuplicateClass,
		}
		return
	}

	required := map[string]struct{}{}
	threshold := 0.50
	if dt, ok := p.table.Lookup(doctype.ClassPassport); ok {
		required = dt.RequiredSet()
		if dt.CoverageThreshold > 0 {
			threshold = dt.CoverageThreshold
		}
	}

	matching := make(map[string]struct{})
	for _, e := range entities {
		if _, ok := required[e.BackendEntityKey]; ok {
			matching[e.BackendEntityKey] = struct{}{}
		}
	}

	if float64(len(matching)) >= float64(len(required))*threshold {
		// Only validated-coverage fields surface; others are dropped
		// even when present.
		kept := make([]domain.Entity, 0, len(matching))
		for _, e := range entities {
			if _, ok := matching[e.BackendEntityKey]; ok {
				kept = append(kept, e)
			}
		}
		result.Included[page.Number] = domain.PageRecord{Classification: cls, Extraction: kept}
		seen.passport = true
		return
	}

	result.Excluded[page.Number] = domain.PageRecord{
		Classification: cls,
		Extraction:     entities,
		Status:         domain.StatusLowCoverage,
	}
	result.Included[page.Number] = domain.PageRecord{
		Classification: cls,
		Extraction:     []domain.Entity{},
	}
}

// synthesizeEntity builds a cross-filled entity from the trade-license
// template row so it carries the same display name and typing as a
// model-extracted one.
func (p *InclusionPolicy) synthesizeEntity(backendKey, value string) domain.Entity {
	e := domain.Entity{
		EntityName:       backendKey,
		BackendEntityKey: backendKey,
		EntityValue:      domain.Value(value),
		EntityContext:    "{}",
		EntityDataType:   "Alphabet",
		CustomerType:     domain.CustomerNonIndividual,
		RPType:           "Non-Individual-RP",
		SourceModel:      domain.SourceCustomLogic,
	}
	if dt, ok := p.table.Lookup(doctype.ClassTradeLicense); ok {
		if def, found := dt.EntityDefFor(backendKey); found {
			e.EntityName = def.EntityName
			if def.DataType != "" {
				e.EntityDataType = def.DataType
			}
			if def.CustomerType != "" {
				e.CustomerType = domain.NormalizeCustomerType(def.CustomerType)
			}
			if def.RPType != "" {
				e.RPType = def.RPType
			}
		}
	}
	return e
}

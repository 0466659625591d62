// Package doctype holds the document-type configuration table: per-type
// display names, entity template definitions, required entity keys and
// coverage thresholds. The table is data, not code — new document types
// are added as rows, not as new branch logic.
package doctype

import (
	"strings"

	"kycdocs/internal/domain"
)

// Canonical lower-cased class names the inclusion pass special-cases.
const (
	ClassEmiratesID   = "emirates id"
	ClassPassport     = "passport"
	ClassTradeLicense = "trade license"
)

// EntityDef is one entity template within a document type. It supplies
// the prompt-facing name, the stable backend key, and which customer
// types the entity applies to.
type EntityDef struct {
	EntityName   string `json:"entity_name"`
	BackendKey   string `json:"backend_entity_key"`
	DataType     string `json:"entity_data_type,omitempty"`
	CustomerType string `json:"entity_key_customer_type,omitempty"`
	RPType       string `json:"entity_key_rp_type,omitempty"`
	Context      string `json:"entity_context,omitempty"`
	Description  string `json:"entity_description,omitempty"`
}

// DocumentType is one row of the configuration table.
type DocumentType struct {
	Name                 string      `json:"document_name"`
	BackendKey           string      `json:"document_backend_key"`
	CustomerType         string      `json:"customer_type,omitempty"`
	Features             string      `json:"features,omitempty"`
	Description          string      `json:"description,omitempty"`
	NonIndividualVariant string      `json:"description_for_non_individual,omitempty"`
	RequiredEntities     []string    `json:"required_entities,omitempty"`
	CoverageThreshold    float64     `json:"coverage_threshold,omitempty"`
	Entities             []EntityDef `json:"entities"`
}

// RequiredSet returns the required backend keys as a set.
func (d *DocumentType) RequiredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.RequiredEntities))
	for _, k := range d.RequiredEntities {
		set[k] = struct{}{}
	}
	return set
}

// EntityDisplayName returns the template display name for a backend key,
// or the key itself when the table has no row for it.
func (d *DocumentType) EntityDisplayName(backendKey string) string {
	for _, e := range d.Entities {
		if e.BackendKey == backendKey {
			return e.EntityName
		}
	}
	return backendKey
}

// EntityDefFor returns the entity template for a backend key.
func (d *DocumentType) EntityDefFor(backendKey string) (EntityDef, bool) {
	for _, e := range d.Entities {
		if e.BackendKey == backendKey {
			return e, true
		}
	}
	return EntityDef{}, false
}

// EntitiesFor filters the entity templates down to those applicable to
// the given customer type.
func (d *DocumentType) EntitiesFor(customer domain.CustomerType) []EntityDef {
	var out []EntityDef
	for _, e := range d.Entities {
		if domain.NormalizeCustomerType(e.CustomerType).AppliesTo(customer) {
			out = append(out, e)
		}
	}
	return out
}

// Table indexes document types by lower-cased display name.
type Table struct {
	types  []DocumentType
	byName map[string]*DocumentType
}

// NewTable builds a Table from rows. Later duplicate names override
// earlier ones so user-supplied tables can shadow defaults.
func NewTable(types []DocumentType) *Table {
	t := &Table{
		types:  types,
		byName: make(map[string]*DocumentType, len(types)),
	}
	for i := range t.types {
		t.byName[strings.ToLower(t.types[i].Name)] = &t.types[i]
	}
	return t
}

// Lookup finds a document type by class name, case-insensitively.
func (t *Table) Lookup(className string) (*DocumentType, bool) {
	d, ok := t.byName[strings.ToLower(strings.TrimSpace(className))]
	return d, ok
}

// Types returns all rows in declaration order.
func (t *Table) Types() []DocumentType {
	return t.types
}

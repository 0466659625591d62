package extractor

import (
	"sort"
	"strings"

	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
	"kycdocs/internal/unify"
)

// MatchTemplateEntities maps a flattened model payload onto the entity
// templates of a document type. Keys are matched on lower-cased entity
// name, exact first, then fuzzy; templates that stay unmatched are
// dropped rather than emitted empty. Payload keys never invent entities
// that are not in the template.
func MatchTemplateEntities(flat map[string]string, dt *doctype.DocumentType, customer domain.CustomerType, model string) []domain.Entity {
	var out []domain.Entity
	claimed := make(map[string]struct{}, len(flat))

	for _, def := range dt.EntitiesFor(customer) {
		key, ok := bestKey(flat, claimed, def.EntityName)
		if !ok {
			continue
		}
		claimed[key] = struct{}{}
		out = append(out, domain.Entity{
			EntityName:        def.EntityName,
			BackendEntityKey:  def.BackendKey,
			EntityValue:       domain.Value(flat[key]),
			EntityContext:     def.Context,
			EntityDataType:    def.DataType,
			EntityDescription: def.Description,
			CustomerType:      domain.NormalizeCustomerType(def.CustomerType),
			RPType:            def.RPType,
			SourceModel:       model,
		})
	}
	return out
}

// bestKey finds the payload key for a template name: an exact lower-cased
// match wins, otherwise the highest fuzzy score at or above the
// reconciliation threshold.
func bestKey(flat map[string]string, claimed map[string]struct{}, entityName string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(entityName))
	if _, taken := claimed[want]; !taken {
		if _, ok := flat[want]; ok {
			return want, true
		}
	}

	keys := make([]string, 0, len(flat))
	for key := range flat {
		if _, taken := claimed[key]; !taken {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	bestScore := unify.SimilarityThreshold - 1
	var best string
	for _, key := range keys {
		if score := unify.Similarity(want, key); score > bestScore {
			bestScore = score
			best = key
		}
	}
	return best, best != ""
}

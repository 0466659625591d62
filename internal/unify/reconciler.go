package unify

import (
	"math"
	"strings"

	"github.com/agext/levenshtein"

	"kycdocs/internal/domain"
)

// SimilarityThreshold is the normalized edit-distance ratio (0..100) at
// or above which a secondary-source value corroborates the primary one.
// Fixed across all fields; promote to the document-type table if per-field
// tuning ever becomes necessary.
const SimilarityThreshold = 70

// Similarity returns a normalized edit-distance ratio in [0, 100].
func Similarity(a, b string) int {
	return int(math.Round(levenshtein.Similarity(a, b, nil) * 100))
}

// Reconcile merges the primary extractor's entity list with an optional
// secondary list for one page.
//
// The primary source is authoritative for ordering and presentation; the
// secondary source only contributes corroboration (Checked=true on a
// same-key value match) or fills keys the primary missed entirely.
// Matching is exact on BackendEntityKey; values are compared lower-cased
// with a fuzzy ratio. The result length is always >= len(primary) and
// <= len(primary)+len(secondary).
func Reconcile(primary, secondary []domain.Entity, secondaryModel string) []domain.Entity {
	unified := domain.CloneEntities(primary)
	if unified == nil {
		unified = []domain.Entity{}
	}

	if secondary == nil {
		for i := range unified {
			unified[i].Checked = false
		}
		return unified
	}

	considered := make(map[string]struct{}, len(secondary))
	for i := range unified {
		a := &unified[i]
		a.Checked = false
		for _, b := range secondary {
			if a.BackendEntityKey != b.BackendEntityKey {
				continue
			}
			considered[b.BackendEntityKey] = struct{}{}
			score := Similarity(
				strings.ToLower(a.EntityValue.Raw),
				strings.ToLower(b.EntityValue.Raw),
			)
			if score >= SimilarityThreshold {
				a.Checked = true
			}
		}
	}

	for _, b := range secondary {
		if _, seen := considered[b.BackendEntityKey]; seen {
			continue
		}
		considered[b.BackendEntityKey] = struct{}{}
		b.Checked = false
		b.SourceModel = secondaryModel
		unified = append(unified, b)
	}

	return unified
}

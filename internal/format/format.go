// Package format holds the pure value-normalization functions applied to
// extracted entity values before reconciliation. Every function is total:
// parse failures degrade to a fallback value flagged for manual review
// (or to the untouched input for the best-effort formatters), never to an
// error the caller has to handle.
package format

import (
	"log"
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"kycdocs/internal/domain"
)

var (
	yearFirstRe    = regexp.MustCompile(`^\d{4}`)
	alphanumericRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

const passportNumberLen = 9

const idNumberLen = 15

// Date parses a raw date string and canonicalizes it to YYYY-MM-DD.
// Values are read day-first unless the string opens with a 4-digit year,
// in which case year-first ordering wins. Unparseable input comes back as
// a fallback value, never as an error.
func Date(raw string) domain.EntityValue {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.FallbackValue(raw)
	}

	var opts []dateparse.ParserOption
	if !yearFirstRe.MatchString(trimmed) {
		opts = append(opts, dateparse.PreferMonthFirst(false))
	}
	t, err := dateparse.ParseAny(trimmed, opts...)
	if err != nil {
		return domain.FallbackValue(raw)
	}
	return domain.Value(t.Format("2006-01-02"))
}

// PassportNumber strips whitespace and truncates to the first 9
// characters. Anything shorter than 9 characters is flagged for review.
// Lengths count runes, so OCR output with non-ASCII glyphs is never
// split mid-character.
func PassportNumber(raw string) domain.EntityValue {
	cleaned := []rune(strings.ReplaceAll(raw, " ", ""))
	if len(cleaned) >= passportNumberLen {
		return domain.Value(string(cleaned[:passportNumberLen]))
	}
	return domain.FallbackValue(string(cleaned))
}

// IDNumber strips everything but ASCII alphanumerics and keeps the last
// 15. The cleaned value is pure ASCII, so byte indexing is safe here.
// Best-effort: a value that cleans to fewer than 15 characters is
// returned cleaned but untruncated, since the inclusion pass only invokes
// this after its own length check.
func IDNumber(raw string) string {
	cleaned := alphanumericRe.ReplaceAllString(raw, "")
	if len(cleaned) > idNumberLen {
		return cleaned[len(cleaned)-idNumberLen:]
	}
	return cleaned
}

// TradeLicenseNumber strips all non-alphanumeric characters.
func TradeLicenseNumber(raw string) string {
	return alphanumericRe.ReplaceAllString(raw, "")
}

// dateKeys are the backend entity keys normalized with Date.
var dateKeys = map[string]struct{}{
	"date_of_birth":          {},
	"eid_expiry_date":        {},
	"eid_issuance_date":      {},
	"passport_expiry_date":   {},
	"passport_issuance_date": {},
}

// Entities applies the per-key formatter to each entity in place and
// returns the slice. A failure formatting one entity is logged and leaves
// that entity's original value intact; sibling entities are unaffected.
func Entities(entities []domain.Entity) []domain.Entity {
	for i := range entities {
		entities[i] = formatEntity(entities[i])
	}
	return entities
}

func formatEntity(e domain.Entity) (out domain.Entity) {
	out = e
	defer func() {
		if r := recover(); r != nil {
			log.Printf("format: entity %q: recovered from %v, keeping original value", e.BackendEntityKey, r)
			out = e
		}
	}()

	if _, ok := dateKeys[e.BackendEntityKey]; ok {
		e.EntityValue = Date(e.EntityValue.Raw)
		e.ManualCheck = e.ManualCheck || e.EntityValue.ManualCheck
		return e
	}
	if e.BackendEntityKey == "passport_number" {
		e.EntityValue = PassportNumber(e.EntityValue.Raw)
		e.ManualCheck = e.ManualCheck || e.EntityValue.ManualCheck
		return e
	}
	return e
}

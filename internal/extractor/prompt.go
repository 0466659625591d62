package extractor

import (
	"fmt"
	"strings"

	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
)

// BuildExtractionPrompt assembles the system prompt for one extraction
// pass. The field list comes straight from the document-type table so
// the model is asked only for entities the template defines for this
// customer type.
func BuildExtractionPrompt(dt *doctype.DocumentType, customer domain.CustomerType) string {
	var fields strings.Builder
	for _, def := range dt.EntitiesFor(customer) {
		fmt.Fprintf(&fields, "- %q", def.EntityName)
		if def.Description != "" {
			fmt.Fprintf(&fields, ": %s", def.Description)
		}
		fields.WriteString("\n")
	}

	return fmt.Sprintf(`You are a document data extractor for a bank onboarding workflow.
The page is a %s. Extract the following fields from it:

%s
Respond with a single flat JSON object whose keys are exactly the field
names above. Use the value exactly as it appears on the page. Omit any
field that is not present on the page. Do not add commentary or markdown.`,
		dt.Name, fields.String())
}

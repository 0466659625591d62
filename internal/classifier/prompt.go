package classifier

import (
	"fmt"
	"strings"

	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
)

// BuildClassificationPrompt assembles the system prompt for a page
// classification pass from the document-type table. Each candidate class
// is presented with its description so the model picks from a closed set.
func BuildClassificationPrompt(types []doctype.DocumentType, customer domain.CustomerType) string {
	var defs strings.Builder
	var labels []string
	for _, t := range types {
		desc := t.Description
		if customer == domain.CustomerNonIndividual && t.NonIndividualVariant != "" {
			desc = t.NonIndividualVariant
		}
		fmt.Fprintf(&defs, "Class: %s\n Definition:\n%s\n\n", t.Name, desc)
		labels = append(labels, t.Name)
	}

	return `You are a document page classifier for a bank onboarding workflow.
Classify the page into exactly one of the classes defined below.

` + defs.String() + `
Answer with ONLY the class name, exactly as written in this list: ` + strings.Join(labels, ", ") + `.
If the page matches none of the classes, answer "Unknown".`
}

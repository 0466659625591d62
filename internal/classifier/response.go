package classifier

import (
	"fmt"
	"strings"

	"kycdocs/internal/domain"
)

// CleanResponse turns a raw model completion into a classification vote.
// Models occasionally wrap the label in quotes, backticks or newlines;
// everything but the label itself is stripped. The technique label
// records which provider and pass level produced the vote.
func CleanResponse(raw, provider string, level int) domain.ClassificationVote {
	cleaned := strings.ReplaceAll(raw, "\n", " ")
	cleaned = strings.Trim(cleaned, "\"',` ")
	cleaned = strings.TrimSpace(cleaned)

	return domain.ClassificationVote{
		ClassName: cleaned,
		Score:     1,
		Technique: fmt.Sprintf("%s - level %d", provider, level),
	}
}

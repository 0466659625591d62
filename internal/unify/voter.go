// Package unify merges noisy, possibly-conflicting model outputs into a
// single authoritative per-page record: classification voting, two-source
// entity reconciliation, and the category-specific inclusion pass that
// decides what reaches the UI.
package unify

import "kycdocs/internal/domain"

// ResolveVotes merges the ordered classification votes recorded for one
// page into a single decision.
//
// This is a deliberately simple two-voter consensus: only the first two
// votes are compared, later votes are ignored. Extending to n-way
// plurality voting is possible if more classification passes are added.
func ResolveVotes(votes []domain.ClassificationVote) *domain.ResolvedClassification {
	switch {
	case len(votes) == 0:
		// Unclassified; the caller must handle the absence explicitly.
		return nil

	case len(votes) == 1:
		resolved := domain.ResolvedClassification{ClassificationVote: votes[0]}
		resolved.Score = 1.0
		return &resolved

	default:
		if votes[0].ClassName == votes[1].ClassName {
			resolved := domain.ResolvedClassification{ClassificationVote: votes[0]}
			resolved.Score = 1.0
			return &resolved
		}

		// Conflict: the first vote wins as primary but is flagged for
		// review, with the runner-up retained for the audit trail.
		other := votes[1]
		resolved := domain.ResolvedClassification{
			ClassificationVote: votes[0],
			ManualCheck:        true,
			OtherPrediction:    &other,
		}
		resolved.Score = 0.5
		return &resolved
	}
}

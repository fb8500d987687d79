package services

import (
	"recall-backend/domain/core/entities"
)

// FuseCandidates merges the keyword and semantic candidate lists into
// one evidence-annotated set keyed by item id. An id present on both
// sides yields a single hybrid candidate carrying both flags, the
// concatenated matched terms, and the semantic side's score.
//
// Output order is deterministic for a fixed input: keyword candidates
// in their original order, then semantic-only candidates in theirs.
// Downstream ranking imposes the final order.
func FuseCandidates(keyword, semantic []entities.Candidate) []entities.Candidate {
	fused := make([]entities.Candidate, 0, len(keyword)+len(semantic))
	index := make(map[string]int, len(keyword))

	for _, c := range keyword {
		index[c.Item.ID] = len(fused)
		fused = append(fused, c)
	}

	for _, c := range semantic {
		pos, ok := index[c.Item.ID]
		if !ok {
			fused = append(fused, c)
			continue
		}

		merged := fused[pos]
		merged.SemanticMatch = true
		merged.SemanticScore = c.SemanticScore
		merged.MatchedTerms = append(merged.MatchedTerms, c.MatchedTerms...)
		fused[pos] = merged
	}

	return fused
}

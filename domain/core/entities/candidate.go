package entities

// Candidate is a transient, per-query wrapper around an Item produced
// during a single retrieval request. Candidates are created by the
// keyword and semantic finders, merged, scored, then discarded.
type Candidate struct {
	Item          *Item
	MatchedTerms  []string
	KeywordMatch  bool
	SemanticMatch bool
	SemanticScore *float64
}

// NewKeywordCandidate wraps an item found via metadata/keyword matching
func NewKeywordCandidate(item *Item, matchedTerms []string) Candidate {
	return Candidate{
		Item:         item,
		MatchedTerms: matchedTerms,
		KeywordMatch: true,
	}
}

// NewSemanticCandidate wraps an item returned by the semantic index
func NewSemanticCandidate(item *Item, score float64) Candidate {
	return Candidate{
		Item:          item,
		MatchedTerms:  []string{"semantic_match"},
		SemanticMatch: true,
		SemanticScore: &score,
	}
}

// IsHybrid reports whether both retrieval paths found this candidate
func (c *Candidate) IsHybrid() bool {
	return c.KeywordMatch && c.SemanticMatch
}

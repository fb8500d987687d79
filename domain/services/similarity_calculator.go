package services

import (
	"recall-backend/domain/core/entities"
)

// SimilarityCalculator computes keyword-set similarity between items.
// Used by link auto-suggestion, which ranks corpus items by Jaccard
// similarity of their extracted keyword sets.
type SimilarityCalculator interface {
	// Calculate returns similarity between two items in [0,1]
	Calculate(a, b *entities.Item) float64

	// CalculateWithKeywords compares an item against pre-extracted keywords
	CalculateWithKeywords(item *entities.Item, keywords map[string]bool) float64
}

// DefaultSimilarityCalculator implements Jaccard similarity over
// extracted keyword sets.
type DefaultSimilarityCalculator struct {
	extractor TermExtractor
}

// NewDefaultSimilarityCalculator creates a similarity calculator
func NewDefaultSimilarityCalculator(extractor TermExtractor) *DefaultSimilarityCalculator {
	if extractor == nil {
		extractor = NewDefaultTermExtractor()
	}
	return &DefaultSimilarityCalculator{extractor: extractor}
}

// Calculate returns the Jaccard similarity of the two items' keyword sets
func (sc *DefaultSimilarityCalculator) Calculate(a, b *entities.Item) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	return jaccardSimilarity(
		sc.extractor.ExtractKeywordSet(a.SearchText()),
		sc.extractor.ExtractKeywordSet(b.SearchText()),
	)
}

// CalculateWithKeywords compares an item against pre-extracted keywords.
// Extracting the query side once keeps corpus scans linear.
func (sc *DefaultSimilarityCalculator) CalculateWithKeywords(item *entities.Item, keywords map[string]bool) float64 {
	if item == nil || len(keywords) == 0 {
		return 0.0
	}
	return jaccardSimilarity(sc.extractor.ExtractKeywordSet(item.SearchText()), keywords)
}

// jaccardSimilarity calculates the Jaccard index: |A ∩ B| / |A ∪ B|
func jaccardSimilarity(set1, set2 map[string]bool) float64 {
	if len(set1) == 0 && len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	union := make(map[string]bool, len(set1)+len(set2))

	for key := range set1 {
		union[key] = true
		if set2[key] {
			intersection++
		}
	}
	for key := range set2 {
		union[key] = true
	}

	if len(union) == 0 {
		return 0.0
	}
	return float64(intersection) / float64(len(union))
}

package services

import (
	"sort"
	"strings"
	"time"

	"recall-backend/domain/core/entities"
)

// RankingConfig carries the weights and selection policy of the
// relevance ranker. The weight constants are empirically chosen
// defaults preserved from production tuning, not derived values;
// they are surfaced here so deployments can recalibrate against
// their own corpora instead of patching code.
type RankingConfig struct {
	SemanticWeight       float64 // × semantic_score when present
	ProjectWeight        float64 // exact project match
	CategoryWeight       float64 // exact category match
	TagOverlapWeight     float64 // × intersection / max(|tagsA|,|tagsB|)
	KeywordDensityWeight float64 // × min(matches/DensityCap, 1)
	TechnicalWeight      float64 // × matches / max(term_count, 1)

	// Time proximity buckets, mutually exclusive, nearest wins
	SameDayWeight    float64
	SameWeekWeight   float64
	WithinTwoWeeks   float64

	ContentLengthBonus   float64
	LongContentThreshold int
	ComplexityBonus      float64
	ComplexityFloor      int
	HybridMatchBonus     float64

	DensityCap int // keyword hits counted up to this many

	// Selection policy
	ScoreThreshold float64 // keep candidates strictly above this
	MaxResults     int
}

// DefaultRankingConfig returns the production default weights
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		SemanticWeight:       0.40,
		ProjectWeight:        0.25,
		CategoryWeight:       0.15,
		TagOverlapWeight:     0.15,
		KeywordDensityWeight: 0.10,
		TechnicalWeight:      0.08,
		SameDayWeight:        0.08,
		SameWeekWeight:       0.06,
		WithinTwoWeeks:       0.04,
		ContentLengthBonus:   0.02,
		LongContentThreshold: 500,
		ComplexityBonus:      0.02,
		ComplexityFloor:      3,
		HybridMatchBonus:     0.05,
		DensityCap:           10,
		ScoreThreshold:       0.3,
		MaxResults:           5,
	}
}

// ScoredCandidate is a candidate annotated with its relevance score
type ScoredCandidate struct {
	entities.Candidate
	Score float64
}

// RelevanceRanker scores fused candidates against a query item
type RelevanceRanker interface {
	// Rank scores, filters, and truncates candidates per the
	// configured selection policy. Sort is stable: ties keep the
	// fuser's insertion order.
	Rank(query *entities.Item, candidates []entities.Candidate) []ScoredCandidate

	// Score computes a single candidate's relevance in [0,1]
	Score(query *entities.Item, candidate *entities.Candidate) float64
}

// DefaultRelevanceRanker implements the weighted multi-factor model
type DefaultRelevanceRanker struct {
	config    *RankingConfig
	extractor TermExtractor
}

// NewDefaultRelevanceRanker creates a ranker with the given config
func NewDefaultRelevanceRanker(config *RankingConfig, extractor TermExtractor) *DefaultRelevanceRanker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	if extractor == nil {
		extractor = NewDefaultTermExtractor()
	}

	return &DefaultRelevanceRanker{
		config:    config,
		extractor: extractor,
	}
}

// Rank scores all candidates and applies the selection policy
func (rr *DefaultRelevanceRanker) Rank(query *entities.Item, candidates []entities.Candidate) []ScoredCandidate {
	if query == nil || len(candidates) == 0 {
		return nil
	}

	// Query features are extracted once per ranking call
	queryTerms := rr.extractor.Extract(query.SearchText())
	queryTags := query.TagSet()

	scored := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		score := rr.score(query, &candidates[i], queryTerms, queryTags)
		if score <= rr.config.ScoreThreshold {
			continue
		}
		scored = append(scored, ScoredCandidate{Candidate: candidates[i], Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if rr.config.MaxResults > 0 && len(scored) > rr.config.MaxResults {
		scored = scored[:rr.config.MaxResults]
	}

	return scored
}

// Score computes a single candidate's relevance in [0,1]
func (rr *DefaultRelevanceRanker) Score(query *entities.Item, candidate *entities.Candidate) float64 {
	if query == nil || candidate == nil || candidate.Item == nil {
		return 0.0
	}
	return rr.score(query, candidate, rr.extractor.Extract(query.SearchText()), query.TagSet())
}

func (rr *DefaultRelevanceRanker) score(
	query *entities.Item,
	candidate *entities.Candidate,
	queryTerms ExtractedTerms,
	queryTags map[string]bool,
) float64 {
	cfg := rr.config
	item := candidate.Item
	score := 0.0

	if candidate.SemanticScore != nil {
		score += cfg.SemanticWeight * *candidate.SemanticScore
	}

	if query.Project != "" && query.Project == item.Project {
		score += cfg.ProjectWeight
	}

	if query.Category != "" && query.Category == item.Category {
		score += cfg.CategoryWeight
	}

	score += cfg.TagOverlapWeight * tagOverlapRatio(queryTags, item.TagSet())
	score += cfg.KeywordDensityWeight * rr.keywordDensity(queryTerms.Keywords, item)
	score += cfg.TechnicalWeight * technicalOverlap(queryTerms.Technical, item)
	score += rr.timeProximity(query.Created, item.Created)

	if len(item.Content) > cfg.LongContentThreshold {
		score += cfg.ContentLengthBonus
	}

	if item.Complexity >= cfg.ComplexityFloor {
		score += cfg.ComplexityBonus
	}

	if candidate.IsHybrid() {
		score += cfg.HybridMatchBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// tagOverlapRatio returns intersection / max(|a|,|b|), 0 when either is empty
func tagOverlapRatio(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for tag := range a {
		if b[tag] {
			intersection++
		}
	}

	denominator := len(a)
	if len(b) > denominator {
		denominator = len(b)
	}
	return float64(intersection) / float64(denominator)
}

// keywordDensity counts whole-word hits of the query keywords in the
// candidate's text, capped at DensityCap occurrences.
func (rr *DefaultRelevanceRanker) keywordDensity(keywords []string, item *entities.Item) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	keywordSet := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		keywordSet[kw] = true
	}

	matches := 0
	for _, token := range tokenize(item.SearchText()) {
		if keywordSet[token] {
			matches++
		}
	}

	density := float64(matches) / float64(rr.config.DensityCap)
	if density > 1.0 {
		density = 1.0
	}
	return density
}

// technicalOverlap returns the share of query technical terms that
// appear (case-insensitive) in the candidate's text.
func technicalOverlap(technical []string, item *entities.Item) float64 {
	termCount := len(technical)
	if termCount == 0 {
		return 0.0
	}

	haystack := strings.ToLower(item.SearchText())
	matches := 0
	for _, term := range technical {
		if strings.Contains(haystack, strings.ToLower(term)) {
			matches++
		}
	}

	return float64(matches) / float64(termCount)
}

// timeProximity puts the pair into the nearest time bucket
func (rr *DefaultRelevanceRanker) timeProximity(a, b time.Time) float64 {
	delta := a.Sub(b)
	if delta < 0 {
		delta = -delta
	}

	switch {
	case delta <= 24*time.Hour:
		return rr.config.SameDayWeight
	case delta <= 7*24*time.Hour:
		return rr.config.SameWeekWeight
	case delta <= 14*24*time.Hour:
		return rr.config.WithinTwoWeeks
	default:
		return 0.0
	}
}

package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	domainservices "recall-backend/domain/services"
	pkgerrors "recall-backend/pkg/errors"
)

// KeywordFinderConfig configures the metadata/keyword retrieval path
type KeywordFinderConfig struct {
	// TimeWindowDays is the timestamp-proximity match window
	TimeWindowDays int
}

// DefaultKeywordFinderConfig returns the default configuration
func DefaultKeywordFinderConfig() *KeywordFinderConfig {
	return &KeywordFinderConfig{TimeWindowDays: 14}
}

// KeywordCandidateFinder scans the item corpus for candidates sharing
// metadata or literal terms with the query item. The scan is
// O(corpus × terms); corpora beyond low tens of thousands of items
// should page or pre-index upstream.
//
// Self-matches are included here; the orchestrating service excludes
// the query item from final output.
type KeywordCandidateFinder struct {
	corpus    ports.CorpusReader
	extractor domainservices.TermExtractor
	config    *KeywordFinderConfig
	logger    *zap.Logger
}

// NewKeywordCandidateFinder creates a keyword finder
func NewKeywordCandidateFinder(
	corpus ports.CorpusReader,
	extractor domainservices.TermExtractor,
	config *KeywordFinderConfig,
	logger *zap.Logger,
) *KeywordCandidateFinder {
	if extractor == nil {
		extractor = domainservices.NewDefaultTermExtractor()
	}
	if config == nil {
		config = DefaultKeywordFinderConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &KeywordCandidateFinder{
		corpus:    corpus,
		extractor: extractor,
		config:    config,
		logger:    logger,
	}
}

// FindCandidates scans the corpus and marks anything matching at
// least one condition. Every satisfied condition appends a label to
// the candidate's matched-terms evidence trail.
func (f *KeywordCandidateFinder) FindCandidates(ctx context.Context, query *entities.Item) ([]entities.Candidate, error) {
	if query == nil {
		return nil, pkgerrors.NewValidationError("query item cannot be nil")
	}

	items, err := f.corpus.ListItems(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "keyword finder failed to list corpus")
	}

	queryTerms := f.extractor.Extract(query.SearchText())
	queryTags := query.TagSet()
	searchTerms := append(append([]string{}, queryTerms.Keywords...), queryTerms.Technical...)

	var candidates []entities.Candidate
	for _, item := range items {
		matched := f.matchItem(query, item, queryTags, searchTerms)
		if len(matched) == 0 {
			continue
		}
		candidates = append(candidates, entities.NewKeywordCandidate(item, matched))
	}

	f.logger.Debug("keyword candidate scan complete",
		zap.String("queryID", query.ID),
		zap.Int("corpusSize", len(items)),
		zap.Int("candidates", len(candidates)),
	)

	return candidates, nil
}

// matchItem evaluates all match conditions, accumulating labels
func (f *KeywordCandidateFinder) matchItem(
	query, item *entities.Item,
	queryTags map[string]bool,
	searchTerms []string,
) []string {
	var matched []string

	if query.Project != "" && query.Project == item.Project {
		matched = append(matched, "project:"+item.Project)
	}

	if query.Category != "" && query.Category == item.Category {
		matched = append(matched, "category:"+item.Category)
	}

	// Slice order, not set order, so the evidence trail is stable
	// across identical calls.
	seenTags := make(map[string]bool)
	for _, tag := range item.Tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" || seenTags[normalized] || !queryTags[normalized] {
			continue
		}
		seenTags[normalized] = true
		matched = append(matched, "tag:"+normalized)
	}

	content := strings.ToLower(item.SearchText())
	for _, term := range searchTerms {
		if strings.Contains(content, strings.ToLower(term)) {
			matched = append(matched, term)
		}
	}

	delta := query.Created.Sub(item.Created)
	if delta < 0 {
		delta = -delta
	}
	days := int(delta.Hours() / 24)
	if days <= f.config.TimeWindowDays {
		matched = append(matched, fmt.Sprintf("time:%dd", days))
	}

	return matched
}

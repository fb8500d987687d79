package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	domainservices "recall-backend/domain/services"
	pkgerrors "recall-backend/pkg/errors"
	"recall-backend/pkg/observability"
)

// RelatedItem is one entry of a findRelated result
type RelatedItem struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title,omitempty"`
	Type         entities.ConnectionType `json:"type"`
	Relevance    float64                 `json:"relevance"`
	MatchedTerms []string                `json:"matched_terms"`
}

// FindRelatedOptions overrides the selection policy per call.
// Zero values fall back to the configured defaults.
type FindRelatedOptions struct {
	MaxResults int
	Threshold  float64
}

// RelatedItemsService orchestrates a single retrieval request:
// both finders fan out concurrently, the fuser merges, the ranker
// scores and truncates, and the classifier labels the survivors.
type RelatedItemsService struct {
	corpus     ports.CorpusReader
	keyword    *KeywordCandidateFinder
	semantic   *SemanticCandidateFinder
	ranker     domainservices.RelevanceRanker
	classifier domainservices.ConnectionClassifier
	config     *domainservices.RankingConfig
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewRelatedItemsService creates the retrieval orchestrator
func NewRelatedItemsService(
	corpus ports.CorpusReader,
	keyword *KeywordCandidateFinder,
	semantic *SemanticCandidateFinder,
	config *domainservices.RankingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RelatedItemsService {
	if config == nil {
		config = domainservices.DefaultRankingConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RelatedItemsService{
		corpus:     corpus,
		keyword:    keyword,
		semantic:   semantic,
		ranker:     domainservices.NewDefaultRelevanceRanker(config, nil),
		classifier: domainservices.NewDefaultConnectionClassifier(),
		config:     config,
		metrics:    metrics,
		logger:     logger,
	}
}

// FindRelated finds, scores, and classifies items related to itemID
func (s *RelatedItemsService) FindRelated(ctx context.Context, itemID string, opts FindRelatedOptions) ([]RelatedItem, error) {
	query, err := s.corpus.GetItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "findRelated failed to load query item")
	}
	if query == nil {
		return nil, pkgerrors.NewNotFoundError("item " + itemID)
	}

	// The two retrieval paths are independent; fan out and join.
	// The semantic finder degrades to empty on backend failure, so
	// only the keyword path (or cancellation) can fail the group.
	var keywordCandidates, semanticCandidates []entities.Candidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		keywordCandidates, err = s.keyword.FindCandidates(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		semanticCandidates, err = s.semantic.FindCandidates(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := domainservices.FuseCandidates(keywordCandidates, semanticCandidates)

	// The keyword scan includes self-matches; the query item is
	// excluded here, after fusion
	filtered := fused[:0]
	for _, c := range fused {
		if c.Item.ID != query.ID {
			filtered = append(filtered, c)
		}
	}

	ranker := s.ranker
	if opts.MaxResults > 0 || opts.Threshold > 0 {
		override := *s.config
		if opts.MaxResults > 0 {
			override.MaxResults = opts.MaxResults
		}
		if opts.Threshold > 0 {
			override.ScoreThreshold = opts.Threshold
		}
		ranker = domainservices.NewDefaultRelevanceRanker(&override, nil)
	}

	ranked := ranker.Rank(query, filtered)

	if s.metrics != nil {
		s.metrics.ObserveRetrieval(len(keywordCandidates), len(semanticCandidates), len(ranked))
	}

	results := make([]RelatedItem, 0, len(ranked))
	for _, sc := range ranked {
		results = append(results, RelatedItem{
			ID:           sc.Item.ID,
			Title:        sc.Item.Title,
			Type:         s.classifier.Classify(sc.Item, query),
			Relevance:    sc.Score,
			MatchedTerms: sc.MatchedTerms,
		})
	}

	s.logger.Debug("findRelated complete",
		zap.String("itemID", itemID),
		zap.Int("keywordCandidates", len(keywordCandidates)),
		zap.Int("semanticCandidates", len(semanticCandidates)),
		zap.Int("results", len(results)),
	)

	return results, nil
}

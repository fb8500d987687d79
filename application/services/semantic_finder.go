package services

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

// SemanticFinderConfig configures the semantic retrieval path
type SemanticFinderConfig struct {
	// TopK is how many neighbors to request from the index
	TopK int
}

// DefaultSemanticFinderConfig returns the default configuration
func DefaultSemanticFinderConfig() *SemanticFinderConfig {
	return &SemanticFinderConfig{TopK: 10}
}

// SemanticCandidateFinder is a thin adapter over the external
// nearest-neighbor index. It normalizes (id, score) pairs to the
// shared Candidate shape by resolving each id through the corpus.
//
// Failure semantics are deliberately soft: an individual id that no
// longer resolves is skipped, and a dead backend degrades the whole
// call to an empty result instead of an error, so retrieval falls
// back to keyword-only mode. A circuit breaker keeps a flapping
// index from slowing every request down.
type SemanticCandidateFinder struct {
	index   ports.SemanticIndex
	corpus  ports.CorpusReader
	config  *SemanticFinderConfig
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewSemanticCandidateFinder creates a semantic finder. A nil index
// means the semantic backend is not configured; the finder then
// always returns empty results.
func NewSemanticCandidateFinder(
	index ports.SemanticIndex,
	corpus ports.CorpusReader,
	config *SemanticFinderConfig,
	logger *zap.Logger,
) *SemanticCandidateFinder {
	if config == nil {
		config = DefaultSemanticFinderConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "semantic-index",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &SemanticCandidateFinder{
		index:   index,
		corpus:  corpus,
		config:  config,
		breaker: breaker,
		logger:  logger,
	}
}

// FindCandidates queries the semantic index and resolves results to
// full items. Never returns an error for backend unavailability.
func (f *SemanticCandidateFinder) FindCandidates(ctx context.Context, query *entities.Item) ([]entities.Candidate, error) {
	if query == nil {
		return nil, pkgerrors.NewValidationError("query item cannot be nil")
	}
	if f.index == nil {
		return nil, nil
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.index.NearestNeighbors(ctx, query, f.config.TopK)
	})
	if err != nil {
		// Caller-imposed cancellation propagates; only backend
		// outages degrade
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Degraded backend: log and fall back to keyword-only mode
		f.logger.Warn("semantic index unavailable, degrading to keyword-only retrieval",
			zap.String("queryID", query.ID),
			zap.Error(pkgerrors.NewDegradedBackendError("semantic-index", err)),
		)
		return nil, nil
	}

	neighbors := result.([]ports.Neighbor)
	candidates := make([]entities.Candidate, 0, len(neighbors))
	for _, neighbor := range neighbors {
		item, err := f.corpus.GetItem(ctx, neighbor.ID)
		if err != nil || item == nil {
			// Partial results are valid; skip unresolvable ids
			f.logger.Debug("skipping unresolvable semantic hit",
				zap.String("id", neighbor.ID), zap.Error(err))
			continue
		}
		candidates = append(candidates, entities.NewSemanticCandidate(item, neighbor.Score))
	}

	return candidates, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

func newRelatedService(corpus *fakeCorpus, index ports.SemanticIndex) *RelatedItemsService {
	keyword := NewKeywordCandidateFinder(corpus, nil, nil, nil)
	semantic := NewSemanticCandidateFinder(index, corpus, nil, nil)
	return NewRelatedItemsService(corpus, keyword, semantic, nil, nil, nil)
}

func relatedCorpus() *fakeCorpus {
	now := time.Now()
	return &fakeCorpus{items: []*entities.Item{
		{ID: "q1", Title: "Fix auth token crash", Content: "The token validation crashes on expiry",
			Project: "atlas", Category: "auth", Tags: []string{"auth", "bug"}, Created: now},
		{ID: "m1", Title: "Auth token expiry investigation", Content: "Analysis of token expiry crashes",
			Project: "atlas", Category: "auth", Tags: []string{"auth", "bug"}, Created: now.Add(-2 * time.Hour)},
		{ID: "m2", Title: "Billing reconciliation notes", Content: "Monthly invoice totals",
			Project: "ledger", Category: "billing", Created: now.Add(-60 * 24 * time.Hour)},
	}}
}

func TestRelatedItemsService_FindRelated_ExcludesSelf(t *testing.T) {
	svc := newRelatedService(relatedCorpus(), nil)

	results, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{})
	require.NoError(t, err)

	for _, r := range results {
		assert.NotEqual(t, "q1", r.ID, "query item never appears in its own results")
	}
	require.NotEmpty(t, results)
	assert.Equal(t, "m1", results[0].ID)
}

func TestRelatedItemsService_FindRelated_UnknownItem(t *testing.T) {
	svc := newRelatedService(relatedCorpus(), nil)

	_, err := svc.FindRelated(context.Background(), "missing", FindRelatedOptions{})

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRelatedItemsService_FindRelated_DegradedSemanticBackend(t *testing.T) {
	// A dead semantic index must not fail the request
	index := &fakeSemanticIndex{err: errors.New("connection refused")}
	svc := newRelatedService(relatedCorpus(), index)

	results, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{})

	require.NoError(t, err)
	require.NotEmpty(t, results, "keyword-only results still come back")
	assert.Equal(t, 1, index.calls)
}

func TestRelatedItemsService_FindRelated_HybridOutranksKeywordOnly(t *testing.T) {
	index := &fakeSemanticIndex{neighbors: []ports.Neighbor{{ID: "m1", Score: 0.95}}}
	svc := newRelatedService(relatedCorpus(), index)

	results, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, "m1", results[0].ID)
	assert.Contains(t, results[0].MatchedTerms, "semantic_match")
	assert.Greater(t, results[0].Relevance, 0.3)
}

func TestRelatedItemsService_FindRelated_OptionOverrides(t *testing.T) {
	now := time.Now()
	corpus := &fakeCorpus{items: []*entities.Item{
		{ID: "q1", Title: "Query item text", Project: "atlas", Category: "auth", Created: now},
	}}
	// Ten strong siblings, all scoring identically
	for i := 0; i < 10; i++ {
		corpus.items = append(corpus.items, &entities.Item{
			ID: "m" + string(rune('0'+i)), Title: "Sibling text",
			Project: "atlas", Category: "auth", Created: now.Add(-60 * 24 * time.Hour),
		})
	}
	svc := newRelatedService(corpus, nil)

	defaulted, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{})
	require.NoError(t, err)
	assert.Len(t, defaulted, 5, "default cap")

	widened, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{MaxResults: 8})
	require.NoError(t, err)
	assert.Len(t, widened, 8)

	strict, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{Threshold: 0.9})
	require.NoError(t, err)
	assert.Empty(t, strict)
}

func TestRelatedItemsService_FindRelated_ResultsClassified(t *testing.T) {
	svc := newRelatedService(relatedCorpus(), nil)

	results, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, results)
	// m1's content leads with research vocabulary ("investigation")
	assert.Equal(t, entities.ConnectionResearch, results[0].Type)
}

func TestRelatedItemsService_FindRelated_CorpusFailure(t *testing.T) {
	corpus := relatedCorpus()
	svc := newRelatedService(corpus, nil)
	corpus.listErr = errors.New("store offline")

	_, err := svc.FindRelated(context.Background(), "q1", FindRelatedOptions{})

	assert.Error(t, err)
}

func TestRelatedItemsService_FindRelated_SameProjectBugScenario(t *testing.T) {
	// A memory and a task sharing project, category, tags, and
	// creation day clear the threshold on metadata factors alone:
	// 0.25 + 0.15 + 0.15 (full tag overlap) + 0.08 (same day) = 0.63
	// before keyword bonuses.
	now := time.Now()
	corpus := &fakeCorpus{items: []*entities.Item{
		{ID: "m1", Kind: entities.KindMemory,
			Content: "JWT validation fails on refresh",
			Project: "api", Category: "bug", Tags: []string{"auth"},
			Created: now},
		{ID: "t1", Kind: entities.KindTask,
			Title:   "Fix refresh token bug",
			Project: "api", Category: "bug", Tags: []string{"auth"},
			Created: now},
	}}
	svc := newRelatedService(corpus, nil)

	results, err := svc.FindRelated(context.Background(), "m1", FindRelatedOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].ID)
	assert.GreaterOrEqual(t, results[0].Relevance, 0.63)
	assert.LessOrEqual(t, results[0].Relevance, 1.0)
	assert.Equal(t, entities.ConnectionBugFix, results[0].Type)
	assert.Contains(t, results[0].MatchedTerms, "tag:auth")
}

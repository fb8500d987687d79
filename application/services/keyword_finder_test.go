package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

func TestKeywordCandidateFinder_FindCandidates_MatchLabels(t *testing.T) {
	now := time.Now()
	query := &entities.Item{
		ID: "q1", Kind: entities.KindMemory,
		Content: "token refresh expiry",
		Project: "api", Category: "bug", Tags: []string{"auth"},
		Created: now,
	}
	corpus := &fakeCorpus{items: []*entities.Item{
		{ID: "m1", Kind: entities.KindMemory,
			Title:   "Refresh rotation notes",
			Project: "api", Category: "bug", Tags: []string{"auth"},
			Created: now},
	}}
	finder := NewKeywordCandidateFinder(corpus, nil, nil, nil)

	candidates, err := finder.FindCandidates(context.Background(), query)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "m1", candidates[0].Item.ID)
	assert.True(t, candidates[0].KeywordMatch)
	assert.Equal(t,
		[]string{"project:api", "category:bug", "tag:auth", "refresh", "time:0d"},
		candidates[0].MatchedTerms)
}

func TestKeywordCandidateFinder_FindCandidates_TagOrderIsStable(t *testing.T) {
	now := time.Now()
	tags := []string{"auth", "bug", "backend"}
	query := &entities.Item{
		ID: "q1", Kind: entities.KindMemory, Title: "zzz",
		Tags: tags, Created: now,
	}
	corpus := &fakeCorpus{items: []*entities.Item{
		{ID: "m1", Kind: entities.KindMemory, Title: "yyy",
			Tags: tags, Created: now.Add(-48 * time.Hour)},
	}}
	finder := NewKeywordCandidateFinder(corpus, nil, nil, nil)

	first, err := finder.FindCandidates(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t,
		[]string{"tag:auth", "tag:bug", "tag:backend", "time:2d"},
		first[0].MatchedTerms)

	for i := 0; i < 20; i++ {
		again, err := finder.FindCandidates(context.Background(), query)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, first[0].MatchedTerms, again[0].MatchedTerms)
	}
}

func TestKeywordCandidateFinder_FindCandidates_TimeWindow(t *testing.T) {
	now := time.Now()
	query := &entities.Item{ID: "q1", Kind: entities.KindMemory, Title: "zzz", Created: now}
	corpus := &fakeCorpus{items: []*entities.Item{
		{ID: "edge", Kind: entities.KindMemory, Title: "yyy",
			Created: now.Add(-14 * 24 * time.Hour)},
		{ID: "outside", Kind: entities.KindMemory, Title: "xxx",
			Created: now.Add(-15 * 24 * time.Hour)},
	}}
	finder := NewKeywordCandidateFinder(corpus, nil, nil, nil)

	candidates, err := finder.FindCandidates(context.Background(), query)

	require.NoError(t, err)
	require.Len(t, candidates, 1, "the window is inclusive at 14 days and closed after")
	assert.Equal(t, "edge", candidates[0].Item.ID)
	assert.Equal(t, []string{"time:14d"}, candidates[0].MatchedTerms)
}

func TestKeywordCandidateFinder_FindCandidates_IncludesSelf(t *testing.T) {
	now := time.Now()
	query := &entities.Item{
		ID: "q1", Kind: entities.KindMemory, Title: "zzz",
		Project: "api", Created: now,
	}
	corpus := &fakeCorpus{items: []*entities.Item{query}}
	finder := NewKeywordCandidateFinder(corpus, nil, nil, nil)

	candidates, err := finder.FindCandidates(context.Background(), query)

	require.NoError(t, err)
	require.Len(t, candidates, 1, "self-exclusion belongs to the orchestrator, not the finder")
	assert.Equal(t, "q1", candidates[0].Item.ID)
}

func TestKeywordCandidateFinder_FindCandidates_NilQuery(t *testing.T) {
	finder := NewKeywordCandidateFinder(&fakeCorpus{}, nil, nil, nil)

	_, err := finder.FindCandidates(context.Background(), nil)

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestKeywordCandidateFinder_FindCandidates_CorpusFailure(t *testing.T) {
	corpus := &fakeCorpus{listErr: errors.New("disk gone")}
	finder := NewKeywordCandidateFinder(corpus, nil, nil, nil)

	_, err := finder.FindCandidates(context.Background(), &entities.Item{ID: "q1", Title: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

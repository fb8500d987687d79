package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall-backend/domain/core/entities"
)

func TestFuseCandidates_MergesOverlap(t *testing.T) {
	itemA := &entities.Item{ID: "a", Title: "Auth service"}
	itemB := &entities.Item{ID: "b", Title: "Cache layer"}
	itemC := &entities.Item{ID: "c", Title: "Deploy notes"}

	keyword := []entities.Candidate{
		entities.NewKeywordCandidate(itemA, []string{"project:atlas", "auth"}),
		entities.NewKeywordCandidate(itemB, []string{"cache"}),
	}
	semantic := []entities.Candidate{
		entities.NewSemanticCandidate(itemA, 0.91),
		entities.NewSemanticCandidate(itemC, 0.55),
	}

	fused := FuseCandidates(keyword, semantic)

	require.Len(t, fused, 3)

	// Overlapping candidate becomes hybrid with both evidence trails
	hybrid := fused[0]
	assert.Equal(t, "a", hybrid.Item.ID)
	assert.True(t, hybrid.KeywordMatch)
	assert.True(t, hybrid.SemanticMatch)
	assert.True(t, hybrid.IsHybrid())
	require.NotNil(t, hybrid.SemanticScore)
	assert.InDelta(t, 0.91, *hybrid.SemanticScore, 1e-9)
	assert.Equal(t, []string{"project:atlas", "auth", "semantic_match"}, hybrid.MatchedTerms)

	// Keyword-only and semantic-only candidates pass through unchanged
	assert.Equal(t, "b", fused[1].Item.ID)
	assert.False(t, fused[1].IsHybrid())
	assert.Equal(t, "c", fused[2].Item.ID)
	assert.False(t, fused[2].KeywordMatch)
}

func TestFuseCandidates_EmptyInputs(t *testing.T) {
	item := &entities.Item{ID: "a"}

	assert.Empty(t, FuseCandidates(nil, nil))
	assert.Len(t, FuseCandidates([]entities.Candidate{entities.NewKeywordCandidate(item, nil)}, nil), 1)
	assert.Len(t, FuseCandidates(nil, []entities.Candidate{entities.NewSemanticCandidate(item, 0.5)}), 1)
}

func TestFuseCandidates_DeterministicOrder(t *testing.T) {
	items := []*entities.Item{{ID: "k1"}, {ID: "k2"}, {ID: "s1"}, {ID: "s2"}}

	keyword := []entities.Candidate{
		entities.NewKeywordCandidate(items[0], nil),
		entities.NewKeywordCandidate(items[1], nil),
	}
	semantic := []entities.Candidate{
		entities.NewSemanticCandidate(items[2], 0.9),
		entities.NewSemanticCandidate(items[3], 0.8),
	}

	fused := FuseCandidates(keyword, semantic)

	ids := make([]string, len(fused))
	for i, c := range fused {
		ids[i] = c.Item.ID
	}
	assert.Equal(t, []string{"k1", "k2", "s1", "s2"}, ids)
}

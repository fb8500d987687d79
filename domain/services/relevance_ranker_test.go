package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall-backend/domain/core/entities"
)

func floatPtr(f float64) *float64 { return &f }

func TestDefaultRelevanceRanker_Score_Bounded(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)
	now := time.Now()

	// A candidate matching on every factor at once
	query := &entities.Item{
		ID:       "q",
		Title:    "Fix AuthService token crash",
		Content:  "The AuthService crashes when the token expires",
		Project:  "atlas",
		Category: "auth",
		Tags:     []string{"auth", "bug"},
		Created:  now,
	}
	candidate := entities.Candidate{
		Item: &entities.Item{
			ID:         "c",
			Title:      "AuthService token expiry crash",
			Content:    "Long investigation of the AuthService token expiry crash. " + string(make([]byte, 500)),
			Project:    "atlas",
			Category:   "auth",
			Tags:       []string{"auth", "bug"},
			Created:    now,
			Complexity: 4,
		},
		KeywordMatch:  true,
		SemanticMatch: true,
		SemanticScore: floatPtr(1.0),
	}

	score := ranker.Score(query, &candidate)

	assert.LessOrEqual(t, score, 1.0)
	assert.Greater(t, score, 0.9, "a full-factor match should saturate")
}

func TestDefaultRelevanceRanker_Score_IndividualFactors(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)
	// Far apart in time so proximity contributes nothing
	old := time.Now().Add(-90 * 24 * time.Hour)
	query := &entities.Item{ID: "q", Title: "zzz", Project: "atlas", Category: "auth", Created: time.Now()}

	tests := []struct {
		name     string
		item     *entities.Item
		expected float64
	}{
		{
			"project match alone",
			&entities.Item{ID: "c", Title: "yyy", Project: "atlas", Created: old},
			0.25,
		},
		{
			"category match alone",
			&entities.Item{ID: "c", Title: "yyy", Category: "auth", Created: old},
			0.15,
		},
		{
			"no overlap at all",
			&entities.Item{ID: "c", Title: "yyy", Created: old},
			0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := entities.NewKeywordCandidate(tt.item, nil)
			assert.InDelta(t, tt.expected, ranker.Score(query, &candidate), 1e-9)
		})
	}
}

func TestDefaultRelevanceRanker_Score_TagOverlapRatio(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)
	old := time.Now().Add(-90 * 24 * time.Hour)

	query := &entities.Item{ID: "q", Title: "zzz", Tags: []string{"auth", "jwt", "login", "session"}, Created: time.Now()}
	candidate := entities.NewKeywordCandidate(
		&entities.Item{ID: "c", Title: "yyy", Tags: []string{"auth", "jwt"}, Created: old},
		nil,
	)

	// 2 shared tags over max(4, 2) = 0.5 ratio against the 0.15 weight
	assert.InDelta(t, 0.15*0.5, ranker.Score(query, &candidate), 1e-9)
}

func TestDefaultRelevanceRanker_Score_HybridBonus(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)
	old := time.Now().Add(-90 * 24 * time.Hour)
	query := &entities.Item{ID: "q", Title: "zzz", Created: time.Now()}

	base := entities.Candidate{
		Item:          &entities.Item{ID: "c", Title: "yyy", Created: old},
		SemanticMatch: true,
		SemanticScore: floatPtr(0.5),
	}
	hybrid := base
	hybrid.KeywordMatch = true

	baseScore := ranker.Score(query, &base)
	hybridScore := ranker.Score(query, &hybrid)

	assert.InDelta(t, 0.05, hybridScore-baseScore, 1e-9)
}

func TestDefaultRelevanceRanker_Rank_ThresholdAndTruncation(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)
	now := time.Now()
	old := now.Add(-90 * 24 * time.Hour)
	query := &entities.Item{ID: "q", Title: "zzz", Project: "atlas", Category: "auth", Created: now}

	var candidates []entities.Candidate
	// Seven strong candidates (project + category = 0.40)
	for i := 0; i < 7; i++ {
		candidates = append(candidates, entities.NewKeywordCandidate(
			&entities.Item{ID: string(rune('a' + i)), Title: "yyy", Project: "atlas", Category: "auth", Created: old},
			nil,
		))
	}
	// One weak candidate below the 0.3 threshold (project only = 0.25)
	candidates = append(candidates, entities.NewKeywordCandidate(
		&entities.Item{ID: "weak", Title: "yyy", Project: "atlas", Created: old},
		nil,
	))

	ranked := ranker.Rank(query, candidates)

	require.Len(t, ranked, 5, "results are capped at MaxResults")
	for _, sc := range ranked {
		assert.Greater(t, sc.Score, 0.3)
		assert.NotEqual(t, "weak", sc.Item.ID)
	}
}

func TestDefaultRelevanceRanker_Rank_ScoreExactlyAtThresholdExcluded(t *testing.T) {
	cfg := DefaultRankingConfig()
	cfg.ScoreThreshold = 0.25
	ranker := NewDefaultRelevanceRanker(cfg, nil)
	old := time.Now().Add(-90 * 24 * time.Hour)

	query := &entities.Item{ID: "q", Title: "zzz", Project: "atlas", Created: time.Now()}
	// Project match alone scores exactly 0.25
	candidates := []entities.Candidate{entities.NewKeywordCandidate(
		&entities.Item{ID: "c", Title: "yyy", Project: "atlas", Created: old},
		nil,
	)}

	assert.Empty(t, ranker.Rank(query, candidates), "threshold is strictly greater-than")
}

func TestDefaultRelevanceRanker_Rank_StableDescendingOrder(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)
	now := time.Now()
	old := now.Add(-90 * 24 * time.Hour)
	query := &entities.Item{ID: "q", Title: "zzz", Project: "atlas", Category: "auth", Created: now}

	candidates := []entities.Candidate{
		// project only: below threshold once, this one is mid via project+category
		entities.NewKeywordCandidate(&entities.Item{ID: "mid-1", Title: "yyy", Project: "atlas", Category: "auth", Created: old}, nil),
		entities.NewKeywordCandidate(&entities.Item{ID: "mid-2", Title: "yyy", Project: "atlas", Category: "auth", Created: old}, nil),
		{
			Item:          &entities.Item{ID: "high", Title: "yyy", Project: "atlas", Category: "auth", Created: old},
			SemanticMatch: true,
			SemanticScore: floatPtr(0.9),
		},
	}

	ranked := ranker.Rank(query, candidates)

	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].Item.ID)
	// Equal scores keep fuser insertion order
	assert.Equal(t, "mid-1", ranked[1].Item.ID)
	assert.Equal(t, "mid-2", ranked[2].Item.ID)
}

func TestDefaultRelevanceRanker_Rank_EmptyInputs(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)

	assert.Nil(t, ranker.Rank(nil, []entities.Candidate{}))
	assert.Nil(t, ranker.Rank(&entities.Item{ID: "q"}, nil))
}

func TestDefaultRelevanceRanker_TimeProximityBuckets(t *testing.T) {
	ranker := NewDefaultRelevanceRanker(nil, nil)
	now := time.Now()
	query := &entities.Item{ID: "q", Title: "zzz", Created: now}

	tests := []struct {
		name     string
		age      time.Duration
		expected float64
	}{
		{"same day", 6 * time.Hour, 0.08},
		{"same week", 3 * 24 * time.Hour, 0.06},
		{"within two weeks", 10 * 24 * time.Hour, 0.04},
		{"older", 30 * 24 * time.Hour, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := entities.NewKeywordCandidate(
				&entities.Item{ID: "c", Title: "yyy", Created: now.Add(-tt.age)},
				nil,
			)
			assert.InDelta(t, tt.expected, ranker.Score(query, &candidate), 1e-9)
		})
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recommendFor(t *testing.T, matches []Match) []Recommendation {
	t.Helper()
	acc, err := ComputeAccuracy(matches)
	require.NoError(t, err)
	return Recommend(acc, DetectBias(acc), Segment(matches))
}

func kinds(recs []Recommendation) []RecommendationKind {
	var out []RecommendationKind
	for _, r := range recs {
		out = append(out, r.Kind)
	}
	return out
}

func TestRecommend_SixtyAccurateHighValueMatches(t *testing.T) {
	// 60 matches ≤5% de error, alternando over/under y todos > $1000
	var matches []Match
	for i := 0; i < 60; i++ {
		predicted := 1960.0
		if i%2 == 0 {
			predicted = 2040.0
		}
		matches = append(matches, mkMatch("watches", predicted, 2000))
	}

	recs := recommendFor(t, matches)
	assert.Empty(t, recs)
	assert.NotContains(t, kinds(recs), RecDataVolume)
	assert.NotContains(t, kinds(recs), RecSystematicBias)
}

func TestRecommend_SixtyAccurateLowValueMatches(t *testing.T) {
	var matches []Match
	for i := 0; i < 60; i++ {
		predicted := 98.0
		if i%2 == 0 {
			predicted = 102.0
		}
		matches = append(matches, mkMatch("books", predicted, 100))
	}

	recs := recommendFor(t, matches)
	assert.Equal(t, []RecommendationKind{RecHighValueGap}, kinds(recs))
	assert.Equal(t, 0, recs[0].AffectedCount)
}

func TestRecommend_AllRulesInOrder(t *testing.T) {
	matches := []Match{
		mkMatch("furniture", 200, 100), // 100% over
		mkMatch("furniture", 150, 100), // 50% over
		mkMatch("books", 12, 10),       // 20% over
	}

	recs := recommendFor(t, matches)
	require.Equal(t, []RecommendationKind{
		RecSystematicBias,
		RecCategoryError,
		RecHighValueGap,
		RecDataVolume,
	}, kinds(recs))

	assert.Equal(t, "Systematic Over-Prediction", recs[0].Issue)
	assert.Equal(t, "AI over-predicts 100% of the time", recs[0].Detail)
	assert.Equal(t, 3, recs[0].AffectedCount)

	assert.Contains(t, recs[1].Issue, `"furniture"`)
	assert.Contains(t, recs[1].Fix, `"furniture"`)
	assert.Equal(t, 2, recs[1].AffectedCount)

	assert.Equal(t, "Only 3 predictions validated", recs[3].Detail)
	assert.Equal(t, 3, recs[3].AffectedCount)
}

func TestRecommend_UnderBias(t *testing.T) {
	recs := recommendFor(t, []Match{mkMatch("a", 90, 100), mkMatch("a", 95, 100)})
	require.NotEmpty(t, recs)
	assert.Equal(t, RecSystematicBias, recs[0].Kind)
	assert.Equal(t, "Systematic Under-Prediction", recs[0].Issue)
	assert.Equal(t, 2, recs[0].AffectedCount)
}

func TestRecommend_WorstCategoryBelowThreshold(t *testing.T) {
	recs := recommendFor(t, []Match{mkMatch("a", 90, 100), mkMatch("a", 110, 100)})
	assert.NotContains(t, kinds(recs), RecCategoryError)
}

func TestOutcomeReportingRecommendations(t *testing.T) {
	recs := OutcomeReportingRecommendations(Diagnostics{PredictionsWithPrice: 12})
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Equal(t, RecOutcomeReporting, r.Kind)
		assert.Equal(t, 12, r.AffectedCount)
	}
	assert.Contains(t, recs[0].Detail, "12 listings")
}

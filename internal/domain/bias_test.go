package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBias_SystematicOver(t *testing.T) {
	f := DetectBias(Accuracy{Total: 10, Over: 7, Under: 3})
	assert.True(t, f.Systematic)
	assert.Equal(t, DirectionOver, f.Direction)
	assert.InDelta(t, 70.0, f.Rate, 1e-9)
}

func TestDetectBias_SystematicUnder(t *testing.T) {
	f := DetectBias(Accuracy{Total: 10, Over: 2, Under: 8})
	assert.True(t, f.Systematic)
	assert.Equal(t, DirectionUnder, f.Direction)
	assert.InDelta(t, 80.0, f.Rate, 1e-9)
}

func TestDetectBias_AtRatioIsNotSystematic(t *testing.T) {
	// 6 > 4×1.5 es falso: la regla es estricta
	f := DetectBias(Accuracy{Total: 10, Over: 6, Under: 4})
	assert.False(t, f.Systematic)
	assert.Empty(t, f.Direction)
}

func TestDetectBias_AllExact(t *testing.T) {
	f := DetectBias(Accuracy{Total: 3, Exact: 3})
	assert.False(t, f.Systematic)
	assert.Equal(t, 3, f.Exact)
}

func TestPearson_PerfectCorrelation(t *testing.T) {
	r, ok := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)

	r, ok = Pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	assert.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-9)
}

func TestPearson_Degenerate(t *testing.T) {
	_, ok := Pearson([]float64{1}, []float64{1})
	assert.False(t, ok, "one pair")

	_, ok = Pearson([]float64{1, 2}, []float64{5, 5})
	assert.False(t, ok, "zero variance")

	_, ok = Pearson([]float64{1, 2}, []float64{1})
	assert.False(t, ok, "length mismatch")
}

func TestCorrelateErrorWithDays_InsufficientData(t *testing.T) {
	c := CorrelateErrorWithDays([]Match{withDays(mkMatch("a", 90, 100), 3), mkMatch("a", 50, 100)})
	assert.Equal(t, 1, c.Pairs)
	assert.False(t, c.Sufficient)
	assert.False(t, c.SlowerOnMiss)

	c = CorrelateErrorWithDays(nil)
	assert.Equal(t, 0, c.Pairs)
	assert.False(t, c.Sufficient)
}

func TestCorrelateErrorWithDays_SlowerOnMiss(t *testing.T) {
	matches := []Match{
		withDays(mkMatch("a", 95, 100), 1),  // 5%
		withDays(mkMatch("a", 80, 100), 10), // 20%
		withDays(mkMatch("a", 60, 100), 30), // 40%
		mkMatch("a", 10, 100),               // sin días: ignorado
	}

	c := CorrelateErrorWithDays(matches)
	assert.Equal(t, 3, c.Pairs)
	assert.True(t, c.Sufficient)
	assert.Greater(t, c.Coefficient, CorrelationThreshold)
	assert.True(t, c.SlowerOnMiss)
}

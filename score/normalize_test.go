package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogMinMaxSpreadsHeavyTail(t *testing.T) {
	// a direct min-max would collapse the first two values near 0
	scores, r := LogMinMax([]float64{0, 50, 48_000_000})

	assert.Equal(t, 0.0, scores[0])
	assert.Equal(t, 1.0, scores[2])
	// the middle value must stay spread across the scale, not squashed
	assert.True(t, scores[1] > 0.2, "middle value collapsed to %f", scores[1])
	assert.True(t, scores[1] < 0.8)

	assert.Equal(t, 0.0, r.LogMin)
	assert.InDelta(t, math.Log1p(48_000_000), r.LogMax, 1e-9)
}

func TestLogMinMaxAllZero(t *testing.T) {
	scores, _ := LogMinMax([]float64{0, 0, 0})
	for _, s := range scores {
		assert.Equal(t, 0.0, s)
	}
}

func TestLogMinMaxConstantColumn(t *testing.T) {
	scores, _ := LogMinMax([]float64{7, 7, 7})
	for _, s := range scores {
		assert.Equal(t, 0.0, s)
	}
}

func TestLogMinMaxBoundsAndOrder(t *testing.T) {
	raw := []float64{3, 0, 125, 9000, 42}
	scores, _ := LogMinMax(raw)

	for _, s := range scores {
		assert.True(t, s >= 0 && s <= 1)
	}
	// normalization preserves ordering
	assert.True(t, scores[3] > scores[2])
	assert.True(t, scores[2] > scores[4])
	assert.True(t, scores[4] > scores[0])
	assert.True(t, scores[0] > scores[1])
}

func TestLogMinMaxNonFinite(t *testing.T) {
	scores, _ := LogMinMax([]float64{math.NaN(), math.Inf(1), 10, 0})
	for _, s := range scores {
		assert.False(t, math.IsNaN(s))
		assert.False(t, math.IsInf(s, 0))
	}
	// non-finite raw values count as zero
	assert.Equal(t, scores[0], scores[3])
	assert.Equal(t, 1.0, scores[2])
}

func TestLogMinMaxStable(t *testing.T) {
	// renormalizing an already normalized column keeps the endpoints fixed
	// and every value inside the unit interval
	first, _ := LogMinMax([]float64{0, 4, 16, 256})
	second, _ := LogMinMax(first)

	assert.Equal(t, 0.0, second[0])
	assert.Equal(t, 1.0, second[3])
	for i := 1; i < len(second); i++ {
		assert.True(t, second[i] >= second[i-1])
	}
}

func TestLogMinMaxEmpty(t *testing.T) {
	scores, _ := LogMinMax(nil)
	assert.Empty(t, scores)
}

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, out float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.out, Clamp01(c.in))
	}
}

package density

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/georisk-api/spatial"
)

func point(x, y float64) spatial.Point {
	return spatial.Point{X: x, Y: y, Valid: true}
}

func TestDensitiesRankClusters(t *testing.T) {
	e, err := NewEstimator(1000)
	require.NoError(t, err)

	// a tight cluster and a single remote point
	points := []spatial.Point{
		point(0, 0),
		point(200, 0),
		point(0, 300),
		point(150, 150),
		point(50000, 50000),
	}

	densities := e.Densities(points)
	for i := 0; i < 4; i++ {
		assert.True(t, densities[i] > densities[4],
			"cluster point %d (%e) should outrank the remote point (%e)", i, densities[i], densities[4])
	}
}

func TestDensitiesUniformWhenIdentical(t *testing.T) {
	e, err := NewEstimator(500)
	require.NoError(t, err)

	densities := e.Densities([]spatial.Point{
		point(100, 100),
		point(100, 100),
		point(100, 100),
	})

	assert.Equal(t, densities[0], densities[1])
	assert.Equal(t, densities[1], densities[2])
	assert.True(t, densities[0] > 0)
}

func TestDensitiesSkipInvalid(t *testing.T) {
	e, err := NewEstimator(1000)
	require.NoError(t, err)

	densities := e.Densities([]spatial.Point{
		point(0, 0),
		{},
		point(100, 0),
	})

	assert.Zero(t, densities[1])
	assert.True(t, densities[0] > 0)
}

func TestDensitiesEmpty(t *testing.T) {
	e, err := NewEstimator(1000)
	require.NoError(t, err)
	assert.Empty(t, e.Densities(nil))
}

func TestNewEstimatorValidatesBandwidth(t *testing.T) {
	_, err := NewEstimator(0)
	assert.Error(t, err)
	_, err = NewEstimator(-5)
	assert.Error(t, err)
}

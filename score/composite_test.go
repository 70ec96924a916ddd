package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/georisk-api/schema"
)

func TestCompositeFixedPoints(t *testing.T) {
	w := schema.DefaultRiskWeights

	zero := Composite(w, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, 0.0, zero)
	assert.Equal(t, schema.RiskLevelLow, schema.RiskLevelFromComposite(zero))

	one := Composite(w, 1, 1, 1, 1, 1, 1)
	assert.InDelta(t, 1.0, one, 1e-9)
	assert.Equal(t, schema.RiskLevelCritical, schema.RiskLevelFromComposite(one))
}

func TestCompositeWeighting(t *testing.T) {
	w := schema.RiskWeights{
		UrbanDensity:   0.5,
		ClimateAnomaly: 0.5,
	}

	assert.InDelta(t, 0.5, Composite(w, 1, 0, 0, 0, 0, 0), 1e-9)
	assert.InDelta(t, 0.3, Composite(w, 0.2, 0.4, 0, 0, 0, 0), 1e-9)
	// categories with zero weight contribute nothing
	assert.InDelta(t, 0.0, Composite(w, 0, 0, 1, 1, 1, 1), 1e-9)
}

func TestCompositeClipsOutOfRangeInputs(t *testing.T) {
	w := schema.DefaultRiskWeights

	v := Composite(w, 12, -3, 1, 1, 1, 1)
	assert.True(t, v >= 0 && v <= 1)
}

func TestRiskLevelPartition(t *testing.T) {
	cases := []struct {
		composite float64
		level     schema.RiskLevel
	}{
		{0.0, schema.RiskLevelLow},
		{0.249, schema.RiskLevelLow},
		{0.25, schema.RiskLevelMedium},
		{0.499, schema.RiskLevelMedium},
		{0.5, schema.RiskLevelHigh},
		{0.749, schema.RiskLevelHigh},
		{0.75, schema.RiskLevelCritical},
		{1.0, schema.RiskLevelCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.level, schema.RiskLevelFromComposite(c.composite), "composite %f", c.composite)
	}
}

func TestWeightValidation(t *testing.T) {
	assert.NoError(t, schema.DefaultRiskWeights.Validate())

	bad := schema.RiskWeights{UrbanDensity: 0.9, ClimateAnomaly: 0.3}
	err := bad.Validate()
	assert.Error(t, err)
	_, ok := err.(*schema.ConfigurationError)
	assert.True(t, ok)

	negative := schema.RiskWeights{UrbanDensity: 1.2, ClimateAnomaly: -0.2}
	assert.Error(t, negative.Validate())
}

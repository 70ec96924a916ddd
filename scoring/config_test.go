package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/georisk-api/schema"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.UrbanDensity = 0.9

	err := cfg.Validate()
	assert.Error(t, err)

	_, isConfig := err.(*schema.ConfigurationError)
	assert.True(t, isConfig)
}

func TestValidateRejectsNonPositiveRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Radii.SeismicRadiusM = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Radii.FireRadiusM = -5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveCutoff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LabelCutoffs.EarthquakeM = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadBandwidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KDEBandwidthM = 0
	assert.Error(t, cfg.Validate())
}

package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/georisk-api/schema"
)

func correlated(obs schema.HazardObservation, distanceKM float64) CorrelatedObservation {
	return CorrelatedObservation{Observation: obs, DistanceKM: distanceKM}
}

func TestUrbanDensityRaw(t *testing.T) {
	raw, count := UrbanDensityRaw([]CorrelatedObservation{
		correlated(schema.HazardObservation{FeatureType: schema.FeatureTypeBuilding, FootprintAreaM2: 2_000_000}, 1),
		correlated(schema.HazardObservation{FeatureType: schema.FeatureTypeBuilding, FootprintAreaM2: 1_000_000}, 2),
		correlated(schema.HazardObservation{FeatureType: "landuse"}, 3),
	})

	assert.Equal(t, 3, count)
	// 3 features + 3 km2 of building footprint
	assert.InDelta(t, 6.0, raw, 1e-9)
}

func TestUrbanDensityRawEmpty(t *testing.T) {
	raw, count := UrbanDensityRaw(nil)
	assert.Zero(t, raw)
	assert.Zero(t, count)
}

func TestClimateAnomalyRaw(t *testing.T) {
	samples := make([]schema.HazardObservation, 0, 11)
	for i := 0; i < 10; i++ {
		samples = append(samples, schema.HazardObservation{TempMaxC: 20, PrecipitationMM: 1})
	}
	// one day far above the temperature mean
	samples = append(samples, schema.HazardObservation{TempMaxC: 45, PrecipitationMM: 1})

	raw, extreme, total := ClimateAnomalyRaw(samples)
	assert.Equal(t, 11, total)
	assert.Equal(t, 1, extreme)
	assert.InDelta(t, 1.0/11.0, raw, 1e-9)
}

func TestClimateAnomalyRawEmpty(t *testing.T) {
	raw, extreme, total := ClimateAnomalyRaw(nil)
	assert.Zero(t, raw)
	assert.Zero(t, extreme)
	assert.Zero(t, total)
}

func TestSeismicEnergyRaw(t *testing.T) {
	single := func(magnitude, distanceKM float64) float64 {
		return SeismicEnergyRaw([]CorrelatedObservation{
			correlated(schema.HazardObservation{Magnitude: magnitude}, distanceKM),
		})
	}

	// one magnitude-5 event at 10 km: 10^7.5 / 100
	assert.InDelta(t, math.Pow(10, 7.5)/100, single(5, 10), 1e-6)

	// magnitude monotonicity at fixed distance
	assert.True(t, single(6, 50) > single(5, 50))
	// distance monotonicity at fixed magnitude
	assert.True(t, single(5, 10) > single(5, 100))

	// distances are clamped at 0.1 km
	assert.Equal(t, single(4, 0.0), single(4, 0.1))
}

func TestFireRiskRaw(t *testing.T) {
	raw := FireRiskRaw([]CorrelatedObservation{
		correlated(schema.HazardObservation{RadiativePower: 50, Confidence: 80}, 10),
		correlated(schema.HazardObservation{RadiativePower: 20, Confidence: 100}, 2),
	})

	assert.InDelta(t, 50*0.8/10+20*1.0/2, raw, 1e-9)
}

func TestFloodRiskRaw(t *testing.T) {
	raw := FloodRiskRaw([]CorrelatedObservation{
		correlated(schema.HazardObservation{FloodIntensity: 2}, 5),
		correlated(schema.HazardObservation{FloodIntensity: 4}, 8),
	})

	// 0.5*count + 0.5*meanIntensity
	assert.InDelta(t, 0.5*2+0.5*3, raw, 1e-9)
	assert.Zero(t, FloodRiskRaw(nil))
}

func TestCoastalRisk(t *testing.T) {
	elevation := func(m float64) *float64 { return &m }

	cases := []struct {
		elevation *float64
		expected  float64
	}{
		{nil, 0},
		{elevation(-3), 1.0},
		{elevation(0), 1.0},
		{elevation(2), 0.8},
		{elevation(5), 0.5},
		{elevation(10), 0},
		{elevation(250), 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.expected, CoastalRisk(c.elevation), 1e-9)
	}
}

func TestRawMagnitudesIgnoreNonFinite(t *testing.T) {
	raw := FireRiskRaw([]CorrelatedObservation{
		correlated(schema.HazardObservation{RadiativePower: math.NaN(), Confidence: 90}, 5),
		correlated(schema.HazardObservation{RadiativePower: math.Inf(1), Confidence: 90}, 5),
		correlated(schema.HazardObservation{RadiativePower: 10, Confidence: 50}, 1),
	})

	assert.False(t, math.IsNaN(raw))
	assert.False(t, math.IsInf(raw, 0))
	assert.InDelta(t, 5.0, raw, 1e-9)
}

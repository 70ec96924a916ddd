package schema

import (
	"fmt"
	"math"
)

const weightSumTolerance = 1e-6

// ConfigurationError aborts a scoring run before any computation starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// RiskWeights are the per-category weights of the composite score. They are
// externally configured and must sum to 1 within tolerance.
type RiskWeights struct {
	UrbanDensity   float64 `json:"urban_density" mapstructure:"urban_density"`
	ClimateAnomaly float64 `json:"climate_anomaly" mapstructure:"climate_anomaly"`
	SeismicRisk    float64 `json:"seismic_risk" mapstructure:"seismic_risk"`
	FireRisk       float64 `json:"fire_risk" mapstructure:"fire_risk"`
	FloodRisk      float64 `json:"flood_risk" mapstructure:"flood_risk"`
	CoastalRisk    float64 `json:"coastal_risk" mapstructure:"coastal_risk"`
}

// DefaultRiskWeights are the shipped weighting of the six categories.
var DefaultRiskWeights = RiskWeights{
	UrbanDensity:   0.25,
	ClimateAnomaly: 0.20,
	SeismicRisk:    0.20,
	FireRisk:       0.15,
	FloodRisk:      0.10,
	CoastalRisk:    0.10,
}

func (w RiskWeights) Sum() float64 {
	return w.UrbanDensity + w.ClimateAnomaly + w.SeismicRisk + w.FireRisk + w.FloodRisk + w.CoastalRisk
}

// Validate returns a ConfigurationError when any weight is negative or the
// weights do not sum to 1 within tolerance.
func (w RiskWeights) Validate() error {
	for name, v := range map[string]float64{
		"urban_density":   w.UrbanDensity,
		"climate_anomaly": w.ClimateAnomaly,
		"seismic_risk":    w.SeismicRisk,
		"fire_risk":       w.FireRisk,
		"flood_risk":      w.FloodRisk,
		"coastal_risk":    w.CoastalRisk,
	} {
		if v < 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("negative weight for %s: %f", name, v)}
		}
	}

	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return &ConfigurationError{Reason: fmt.Sprintf("risk weights must sum to 1.0, got %.10f", sum)}
	}

	return nil
}

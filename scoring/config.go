// Package scoring drives the batch passes over the spatial datastore:
// correlation scoring, anomaly detection, density analysis and nearest-site
// labeling.
package scoring

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/bitmark-inc/georisk-api/anomaly"
	"github.com/bitmark-inc/georisk-api/density"
	"github.com/bitmark-inc/georisk-api/schema"
)

// Default correlation radii in meters. The urban pass uses a containment
// buffer; the others accumulate everything within the radius.
const (
	DefaultUrbanBufferM   = 10_000.0
	DefaultSeismicRadiusM = 200_000.0
	DefaultFireRadiusM    = 100_000.0
	DefaultFloodRadiusM   = 100_000.0
)

// Default nearest-site label cutoffs in meters. Labels are display-only
// and deliberately tighter than the scoring radii.
const (
	DefaultUrbanLabelCutoffM      = 5_000.0
	DefaultEarthquakeLabelCutoffM = 50_000.0
	DefaultFireLabelCutoffM       = 25_000.0
	DefaultFloodLabelCutoffM      = 50_000.0
)

const DefaultDensitySummaryRadiusM = 5_000.0

// CategoryRadii are the scoring correlation radii per hazard category.
// Climate samples are pre-attached to sites and need no radius.
type CategoryRadii struct {
	UrbanBufferM   float64 `mapstructure:"urban_buffer_m"`
	SeismicRadiusM float64 `mapstructure:"seismic_radius_m"`
	FireRadiusM    float64 `mapstructure:"fire_radius_m"`
	FloodRadiusM   float64 `mapstructure:"flood_radius_m"`
}

// LabelCutoffs bound the nearest-site labeling pass per category.
type LabelCutoffs struct {
	UrbanM      float64 `mapstructure:"urban_m"`
	EarthquakeM float64 `mapstructure:"earthquake_m"`
	FireM       float64 `mapstructure:"fire_m"`
	FloodM      float64 `mapstructure:"flood_m"`
}

// Config carries every tunable of the batch passes. Zero values are filled
// with defaults by LoadConfig, then the whole set is validated before any
// pass runs.
type Config struct {
	Weights      schema.RiskWeights
	Radii        CategoryRadii
	LabelCutoffs LabelCutoffs
	Anomaly      anomaly.Options

	KDEBandwidthM         float64
	DensitySummaryRadiusM float64

	// DryRun computes everything but writes nothing.
	DryRun bool
}

// DefaultConfig returns the full default parameter set.
func DefaultConfig() Config {
	return Config{
		Weights: schema.DefaultRiskWeights,
		Radii: CategoryRadii{
			UrbanBufferM:   DefaultUrbanBufferM,
			SeismicRadiusM: DefaultSeismicRadiusM,
			FireRadiusM:    DefaultFireRadiusM,
			FloodRadiusM:   DefaultFloodRadiusM,
		},
		LabelCutoffs: LabelCutoffs{
			UrbanM:      DefaultUrbanLabelCutoffM,
			EarthquakeM: DefaultEarthquakeLabelCutoffM,
			FireM:       DefaultFireLabelCutoffM,
			FloodM:      DefaultFloodLabelCutoffM,
		},
		Anomaly:               anomaly.DefaultOptions(),
		KDEBandwidthM:         density.DefaultBandwidthM,
		DensitySummaryRadiusM: DefaultDensitySummaryRadiusM,
	}
}

// LoadConfig reads the scoring section of the loaded viper configuration,
// falling back to defaults for unset keys.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("scoring.weights") {
		if err := viper.UnmarshalKey("scoring.weights", &cfg.Weights); err != nil {
			return nil, &schema.ConfigurationError{Reason: fmt.Sprintf("invalid scoring.weights: %s", err)}
		}
	}
	if viper.IsSet("scoring.radii") {
		if err := viper.UnmarshalKey("scoring.radii", &cfg.Radii); err != nil {
			return nil, &schema.ConfigurationError{Reason: fmt.Sprintf("invalid scoring.radii: %s", err)}
		}
	}
	if viper.IsSet("scoring.label_cutoffs") {
		if err := viper.UnmarshalKey("scoring.label_cutoffs", &cfg.LabelCutoffs); err != nil {
			return nil, &schema.ConfigurationError{Reason: fmt.Sprintf("invalid scoring.label_cutoffs: %s", err)}
		}
	}
	if v := viper.GetInt("scoring.anomaly.trees"); v > 0 {
		cfg.Anomaly.Trees = v
	}
	if v := viper.GetFloat64("scoring.anomaly.contamination"); v > 0 {
		cfg.Anomaly.Contamination = v
	}
	if viper.IsSet("scoring.anomaly.seed") {
		cfg.Anomaly.Seed = viper.GetInt64("scoring.anomaly.seed")
	}
	if v := viper.GetFloat64("scoring.kde.bandwidth_m"); v > 0 {
		cfg.KDEBandwidthM = v
	}
	if v := viper.GetFloat64("scoring.density_summary_radius_m"); v > 0 {
		cfg.DensitySummaryRadiusM = v
	}
	cfg.DryRun = viper.GetBool("scoring.dry_run")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects any parameter set that could not produce a meaningful
// run. Weight validation delegates to the schema.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}

	for name, v := range map[string]float64{
		"urban_buffer_m":   c.Radii.UrbanBufferM,
		"seismic_radius_m": c.Radii.SeismicRadiusM,
		"fire_radius_m":    c.Radii.FireRadiusM,
		"flood_radius_m":   c.Radii.FloodRadiusM,
	} {
		if v <= 0 {
			return &schema.ConfigurationError{Reason: fmt.Sprintf("scoring radius %s must be positive, got %f", name, v)}
		}
	}
	for name, v := range map[string]float64{
		"urban_m":      c.LabelCutoffs.UrbanM,
		"earthquake_m": c.LabelCutoffs.EarthquakeM,
		"fire_m":       c.LabelCutoffs.FireM,
		"flood_m":      c.LabelCutoffs.FloodM,
	} {
		if v <= 0 {
			return &schema.ConfigurationError{Reason: fmt.Sprintf("label cutoff %s must be positive, got %f", name, v)}
		}
	}
	if c.KDEBandwidthM <= 0 {
		return &schema.ConfigurationError{Reason: fmt.Sprintf("kde bandwidth must be positive, got %f", c.KDEBandwidthM)}
	}
	if c.DensitySummaryRadiusM <= 0 {
		return &schema.ConfigurationError{Reason: fmt.Sprintf("density summary radius must be positive, got %f", c.DensitySummaryRadiusM)}
	}
	return nil
}

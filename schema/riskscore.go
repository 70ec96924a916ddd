package schema

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RiskScoreCollection = "risk_scores"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Risk level partition over the composite score. This is the single
// canonical boundary set; every consumer derives levels through
// RiskLevelFromComposite instead of carrying its own bins.
const (
	RiskLevelMediumBound   = 0.25
	RiskLevelHighBound     = 0.50
	RiskLevelCriticalBound = 0.75
)

// RiskLevelFromComposite maps a composite score in [0,1] onto the canonical
// four-level partition: [0,0.25) low, [0.25,0.5) medium, [0.5,0.75) high,
// [0.75,1] critical.
func RiskLevelFromComposite(composite float64) RiskLevel {
	switch {
	case composite >= RiskLevelCriticalBound:
		return RiskLevelCritical
	case composite >= RiskLevelHighBound:
		return RiskLevelHigh
	case composite >= RiskLevelMediumBound:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskLevelColors maps risk levels to display colors for map rendering.
var RiskLevelColors = map[RiskLevel]string{
	RiskLevelCritical: "#d32f2f",
	RiskLevelHigh:     "#f57c00",
	RiskLevelMedium:   "#fbc02d",
	RiskLevelLow:      "#388e3c",
}

// SubScore pairs the raw magnitude of one hazard category with its
// normalized value in [0,1].
type SubScore struct {
	Raw   float64 `bson:"raw" json:"raw"`
	Score float64 `bson:"score" json:"score"`
}

// RiskScore is the per-site scoring record, overwritten wholesale by each
// scoring run. The anomaly fields are written by a separate pass which must
// leave the composite score and risk level untouched.
type RiskScore struct {
	SiteID primitive.ObjectID `bson:"site_id" json:"site_id"`

	UrbanDensity   SubScore `bson:"urban_density" json:"urban_density"`
	ClimateAnomaly SubScore `bson:"climate_anomaly" json:"climate_anomaly"`
	SeismicRisk    SubScore `bson:"seismic_risk" json:"seismic_risk"`
	FireRisk       SubScore `bson:"fire_risk" json:"fire_risk"`
	FloodRisk      SubScore `bson:"flood_risk" json:"flood_risk"`
	CoastalRisk    SubScore `bson:"coastal_risk" json:"coastal_risk"`

	// correlation aggregates surfaced for display consumers
	BuildingCount   int `bson:"building_count" json:"building_count"`
	EarthquakeCount int `bson:"earthquake_count" json:"earthquake_count"`
	FireCount       int `bson:"fire_count" json:"fire_count"`
	FloodCount      int `bson:"flood_count" json:"flood_count"`
	ExtremeDays     int `bson:"extreme_days" json:"extreme_days"`
	TotalDays       int `bson:"total_days" json:"total_days"`

	CompositeScore float64   `bson:"composite_score" json:"composite_score"`
	RiskLevel      RiskLevel `bson:"risk_level" json:"risk_level"`

	AnomalyScore float64 `bson:"anomaly_score" json:"anomaly_score"`
	IsAnomaly    bool    `bson:"is_anomaly" json:"is_anomaly"`
}

// ScoreVector returns the six normalized sub-scores in canonical order,
// the feature row consumed by the anomaly detector.
func (r RiskScore) ScoreVector() []float64 {
	return []float64{
		r.UrbanDensity.Score,
		r.ClimateAnomaly.Score,
		r.SeismicRisk.Score,
		r.FireRisk.Score,
		r.FloodRisk.Score,
		r.CoastalRisk.Score,
	}
}

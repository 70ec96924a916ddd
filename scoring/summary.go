package scoring

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bitmark-inc/georisk-api/score"
)

// SiteOutcome records what happened to one site during a pass. A failed
// write never aborts the pass; it is surfaced here instead.
type SiteOutcome struct {
	SiteID  primitive.ObjectID `json:"site_id"`
	Written bool               `json:"written"`
	Reason  string             `json:"reason,omitempty"`
}

// RunSummary is the operator-facing report of one scoring pass.
type RunSummary struct {
	SitesTotal   int `json:"sites_total"`
	SitesWritten int `json:"sites_written"`
	SitesSkipped int `json:"sites_skipped"`

	ObservationCounts map[string]int `json:"observation_counts"`

	// sites that correlated to nothing in a category, keyed by category
	ZeroCorrelationSites map[string]int `json:"zero_correlation_sites"`

	// observed log-space bounds per normalized column
	NormalizationRanges map[string]score.NormalizationRange `json:"normalization_ranges"`

	Outcomes []SiteOutcome `json:"outcomes,omitempty"`

	DryRun bool `json:"dry_run"`
}

// AnomalySummary is the operator-facing report of one detection pass.
type AnomalySummary struct {
	SitesScored  int `json:"sites_scored"`
	SitesUpdated int `json:"sites_updated"`
	SitesSkipped int `json:"sites_skipped"`
	Anomalies    int `json:"anomalies"`

	DryRun bool `json:"dry_run"`
}

// SiteDensity aggregates the kernel densities of the urban features inside
// the summary radius of one site.
type SiteDensity struct {
	SiteID       primitive.ObjectID `json:"site_id"`
	FeatureCount int                `json:"feature_count"`
	AvgDensity   float64            `json:"avg_density"`
	MaxDensity   float64            `json:"max_density"`
}

// DensitySummary is the operator-facing report of one density pass.
type DensitySummary struct {
	Features        int     `json:"features"`
	FeaturesUpdated int     `json:"features_updated"`
	MeanDensity     float64 `json:"mean_density"`
	MaxDensity      float64 `json:"max_density"`

	// per-site aggregates over the features inside the summary radius;
	// sites without nearby features are omitted
	SiteDensities []SiteDensity `json:"site_densities,omitempty"`

	// sites with at least one urban feature inside the summary radius
	SitesWithNearbyFeatures int `json:"sites_with_nearby_features"`

	DryRun bool `json:"dry_run"`
}

// LabelSummary reports the nearest-site labeling pass per category.
type LabelSummary struct {
	Labeled   map[string]int `json:"labeled"`
	Discarded map[string]int `json:"discarded"`

	DryRun bool `json:"dry_run"`
}

func marshalSummary(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

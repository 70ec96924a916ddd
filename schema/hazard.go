package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HazardCategory is the closed set of observation categories a scoring run
// understands. Coastal risk has no observation category: it derives from
// site elevation alone.
type HazardCategory string

const (
	CategoryUrbanFeature  HazardCategory = "urban-feature"
	CategoryClimateSample HazardCategory = "climate-sample"
	CategorySeismicEvent  HazardCategory = "seismic-event"
	CategoryFireDetection HazardCategory = "fire-detection"
	CategoryFloodSample   HazardCategory = "flood-sample"
)

// HazardCategories lists every observation category in canonical order.
var HazardCategories = []HazardCategory{
	CategoryUrbanFeature,
	CategoryClimateSample,
	CategorySeismicEvent,
	CategoryFireDetection,
	CategoryFloodSample,
}

var hazardCollections = map[HazardCategory]string{
	CategoryUrbanFeature:  "urban_features",
	CategoryClimateSample: "climate_samples",
	CategorySeismicEvent:  "seismic_events",
	CategoryFireDetection: "fire_detections",
	CategoryFloodSample:   "flood_samples",
}

// HazardCollection returns the mongo collection backing a category.
func HazardCollection(category HazardCategory) string {
	return hazardCollections[category]
}

// HazardObservation is a single hazard measurement owned by the ingestion
// layer. Only the fields matching its category are populated.
type HazardObservation struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SourceID string             `bson:"source_id,omitempty" json:"source_id"`
	Category HazardCategory     `bson:"category" json:"category"`
	Location *GeoJSON           `bson:"location" json:"location"`
	Time     *time.Time         `bson:"time,omitempty" json:"time,omitempty"`

	// seismic-event
	Magnitude float64 `bson:"magnitude,omitempty" json:"magnitude,omitempty"`
	DepthKM   float64 `bson:"depth_km,omitempty" json:"depth_km,omitempty"`

	// fire-detection
	RadiativePower float64 `bson:"frp,omitempty" json:"frp,omitempty"`
	Confidence     int     `bson:"confidence,omitempty" json:"confidence,omitempty"`

	// flood-sample
	FloodIntensity float64 `bson:"flood_intensity,omitempty" json:"flood_intensity,omitempty"`

	// urban-feature
	FeatureType     string  `bson:"feature_type,omitempty" json:"feature_type,omitempty"`
	FootprintAreaM2 float64 `bson:"footprint_area_m2,omitempty" json:"footprint_area_m2,omitempty"`
	DensityScore    float64 `bson:"density_score,omitempty" json:"density_score,omitempty"`

	// climate-sample, attached to a site by the ingestion layer
	SiteID          primitive.ObjectID `bson:"site_id,omitempty" json:"site_id,omitempty"`
	TempMaxC        float64            `bson:"temp_max_c,omitempty" json:"temp_max_c,omitempty"`
	PrecipitationMM float64            `bson:"precipitation_mm,omitempty" json:"precipitation_mm,omitempty"`

	// nearest-site label, written by the labeling pass for display consumers
	NearestSiteID    primitive.ObjectID `bson:"nearest_site_id,omitempty" json:"nearest_site_id,omitempty"`
	DistanceToSiteKM float64            `bson:"distance_to_site_km,omitempty" json:"distance_to_site_km,omitempty"`
}

const (
	// FeatureTypeBuilding marks urban features whose footprint area counts
	// toward the urban density raw magnitude.
	FeatureTypeBuilding = "building"
)

package schema

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SiteCollection = "sites"
)

// Site is a geographically fixed point of interest. Sites are created by
// the ingestion layer and never mutated by a scoring run.
type Site struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RefID        string             `bson:"ref_id" json:"ref_id"`
	Name         string             `bson:"name" json:"name"`
	Country      string             `bson:"country,omitempty" json:"country"`
	ISOCode      string             `bson:"iso_code,omitempty" json:"iso_code"`
	InDanger     bool               `bson:"in_danger" json:"in_danger"`
	AreaHectares float64            `bson:"area_hectares,omitempty" json:"area_hectares"`
	ElevationM   *float64           `bson:"elevation_m,omitempty" json:"elevation_m,omitempty"`
	Location     *GeoJSON           `bson:"location" json:"location"`
}

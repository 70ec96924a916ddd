package schema

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoJSON - mongo location format
type GeoJSON struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewPoint builds a GeoJSON point from longitude/latitude, in that order,
// following the mongo 2dsphere coordinate convention.
func NewPoint(lon, lat float64) *GeoJSON {
	return &GeoJSON{
		Type:        "Point",
		Coordinates: []float64{lon, lat},
	}
}

// ToLocation converts a GeoJSON point back into a Location.
func (g *GeoJSON) ToLocation() Location {
	if g == nil || len(g.Coordinates) < 2 {
		return Location{}
	}
	return Location{
		Longitude: g.Coordinates[0],
		Latitude:  g.Coordinates[1],
	}
}

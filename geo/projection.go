package geo

import (
	"fmt"
	"math"

	"github.com/bitmark-inc/georisk-api/schema"
)

// GeometryValidationError is fatal: when the projector fails its self-check
// every downstream distance would be unreliable, so no scoring may proceed.
type GeometryValidationError struct {
	Reason string
}

func (e *GeometryValidationError) Error() string {
	return fmt.Sprintf("geometry validation error: %s", e.Reason)
}

// Projector converts storage coordinates (WGS84 longitude/latitude) into a
// locally accurate planar projection in meters, and back. All correlation
// distances are computed in the metric plane, never in angular coordinates.
type Projector interface {
	ToMetric(loc schema.Location) (x, y float64)
	ToStorage(x, y float64) schema.Location
	SelfCheck() error
}

// authalic sphere radius used by the equal-area projection, in meters
const sphereRadius = 6371007.181

// LambertAzimuthalProjector is a spherical Lambert azimuthal equal-area
// projection. The default parametrization matches the European LAEA grid
// (center 52N 10E, false easting 4321000, false northing 3210000).
type LambertAzimuthalProjector struct {
	lat0          float64 // radians
	lon0          float64 // radians
	falseEasting  float64
	falseNorthing float64

	sinLat0 float64
	cosLat0 float64
}

// NewProjector builds a projector centered on the given latitude/longitude
// in degrees with the given false origin in meters.
func NewProjector(centerLat, centerLon, falseEasting, falseNorthing float64) *LambertAzimuthalProjector {
	lat0 := centerLat * math.Pi / 180
	lon0 := centerLon * math.Pi / 180
	return &LambertAzimuthalProjector{
		lat0:          lat0,
		lon0:          lon0,
		falseEasting:  falseEasting,
		falseNorthing: falseNorthing,
		sinLat0:       math.Sin(lat0),
		cosLat0:       math.Cos(lat0),
	}
}

// NewEuropeProjector returns the projector used for European datasets.
func NewEuropeProjector() *LambertAzimuthalProjector {
	return NewProjector(52.0, 10.0, 4321000.0, 3210000.0)
}

// ToMetric projects a storage location onto the metric plane.
func (p *LambertAzimuthalProjector) ToMetric(loc schema.Location) (float64, float64) {
	lat := loc.Latitude * math.Pi / 180
	dLon := loc.Longitude*math.Pi/180 - p.lon0

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	cosDLon := math.Cos(dLon)

	k := math.Sqrt(2 / (1 + p.sinLat0*sinLat + p.cosLat0*cosLat*cosDLon))

	x := sphereRadius*k*cosLat*math.Sin(dLon) + p.falseEasting
	y := sphereRadius*k*(p.cosLat0*sinLat-p.sinLat0*cosLat*cosDLon) + p.falseNorthing
	return x, y
}

// ToStorage inverts the projection back to longitude/latitude degrees.
func (p *LambertAzimuthalProjector) ToStorage(x, y float64) schema.Location {
	dx := (x - p.falseEasting) / sphereRadius
	dy := (y - p.falseNorthing) / sphereRadius

	rho := math.Hypot(dx, dy)
	if rho == 0 {
		return schema.Location{
			Latitude:  p.lat0 * 180 / math.Pi,
			Longitude: p.lon0 * 180 / math.Pi,
		}
	}

	c := 2 * math.Asin(rho/2)
	sinC, cosC := math.Sin(c), math.Cos(c)

	lat := math.Asin(cosC*p.sinLat0 + dy*sinC*p.cosLat0/rho)
	lon := p.lon0 + math.Atan2(dx*sinC, rho*p.cosLat0*cosC-dy*p.sinLat0*sinC)

	return schema.Location{
		Latitude:  lat * 180 / math.Pi,
		Longitude: lon * 180 / math.Pi,
	}
}

// Distance is the planar euclidean distance between two projected points,
// in meters.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

type referencePair struct {
	name  string
	a, b  schema.Location
	minKM float64
	maxKM float64
}

// SelfCheck projects two pairs of well-known reference points and asserts
// their planar distances fall inside the expected kilometer ranges, then
// verifies projection round-trips stay under a meter. A failure is fatal
// for the whole scoring run.
func (p *LambertAzimuthalProjector) SelfCheck() error {
	paris := schema.Location{Latitude: 48.8566, Longitude: 2.3522}
	london := schema.Location{Latitude: 51.5074, Longitude: -0.1276}
	rome := schema.Location{Latitude: 41.9028, Longitude: 12.4964}
	athens := schema.Location{Latitude: 37.9838, Longitude: 23.7275}

	pairs := []referencePair{
		{name: "Paris-London", a: paris, b: london, minKM: 330, maxKM: 360},
		{name: "Rome-Athens", a: rome, b: athens, minKM: 1000, maxKM: 1150},
	}

	for _, pair := range pairs {
		ax, ay := p.ToMetric(pair.a)
		bx, by := p.ToMetric(pair.b)
		km := Distance(ax, ay, bx, by) / 1000.0
		if km < pair.minKM || km > pair.maxKM {
			return &GeometryValidationError{
				Reason: fmt.Sprintf("%s resolved to %.1f km, expected %.0f-%.0f km", pair.name, km, pair.minKM, pair.maxKM),
			}
		}
	}

	for _, loc := range []schema.Location{paris, london, rome, athens} {
		x, y := p.ToMetric(loc)
		back := p.ToStorage(x, y)
		bx, by := p.ToMetric(back)
		if Distance(x, y, bx, by) > 1.0 {
			return &GeometryValidationError{
				Reason: fmt.Sprintf("round-trip drift above 1 m at (%.4f, %.4f)", loc.Latitude, loc.Longitude),
			}
		}
	}

	return nil
}

package spatial

import (
	"math"

	"github.com/bitmark-inc/georisk-api/geo"
	"github.com/bitmark-inc/georisk-api/schema"
)

// Point is a projected position on the metric plane, in meters.
type Point struct {
	X, Y  float64
	Valid bool
}

// Correlation relates one site to one observation by metric distance. It is
// derived on every run and never persisted. BufferM is non-zero only for
// containment joins.
type Correlation struct {
	SiteIndex        int
	ObservationIndex int
	DistanceKM       float64
	BufferM          float64
}

// Correlator performs the geometric joins between sites and hazard
// observations. Every distance is computed on the metric plane of the
// projector, never in raw angular coordinates.
type Correlator struct {
	projector geo.Projector
}

func NewCorrelator(projector geo.Projector) *Correlator {
	return &Correlator{projector: projector}
}

// ProjectSites projects site locations onto the metric plane. Sites without
// a usable point geometry yield an invalid Point and never correlate.
func (c *Correlator) ProjectSites(sites []schema.Site) []Point {
	points := make([]Point, len(sites))
	for i, s := range sites {
		points[i] = c.project(s.Location)
	}
	return points
}

// ProjectObservations projects observation locations onto the metric plane.
func (c *Correlator) ProjectObservations(observations []schema.HazardObservation) []Point {
	points := make([]Point, len(observations))
	for i, o := range observations {
		points[i] = c.project(o.Location)
	}
	return points
}

func (c *Correlator) project(g *schema.GeoJSON) Point {
	if g == nil || len(g.Coordinates) < 2 {
		return Point{}
	}
	loc := g.ToLocation()
	if math.IsNaN(loc.Latitude) || math.IsNaN(loc.Longitude) ||
		math.IsInf(loc.Latitude, 0) || math.IsInf(loc.Longitude, 0) {
		return Point{}
	}
	x, y := c.projector.ToMetric(loc)
	return Point{X: x, Y: y, Valid: true}
}

// BufferContained builds a disk of the given radius around each site and
// selects every observation falling inside it, recording the exact metric
// distance to the site center. Results are indexed by site.
func (c *Correlator) BufferContained(sites, observations []Point, radiusM float64) [][]Correlation {
	return c.radiusJoin(sites, observations, radiusM, radiusM)
}

// WithinRadius is the many-to-many accumulation join: for every site it
// selects all observations within the radius, regardless of whether another
// site is closer. A single observation may contribute to multiple sites.
func (c *Correlator) WithinRadius(sites, observations []Point, radiusM float64) [][]Correlation {
	return c.radiusJoin(sites, observations, radiusM, 0)
}

func (c *Correlator) radiusJoin(sites, observations []Point, radiusM, bufferM float64) [][]Correlation {
	matches := make([][]Correlation, len(sites))
	if len(sites) == 0 || len(observations) == 0 {
		return matches
	}

	for si, sp := range sites {
		if !sp.Valid {
			continue
		}
		for oi, op := range observations {
			if !op.Valid {
				continue
			}
			d := geo.Distance(sp.X, sp.Y, op.X, op.Y)
			if d <= radiusM {
				matches[si] = append(matches[si], Correlation{
					SiteIndex:        si,
					ObservationIndex: oi,
					DistanceKM:       d / 1000.0,
					BufferM:          bufferM,
				})
			}
		}
	}
	return matches
}

// NearestSite assigns each observation to its single nearest site and
// discards the observation when that distance exceeds the cutoff. This
// labeling discipline is for display consumers only; scoring always uses
// the many-to-many accumulation join.
func (c *Correlator) NearestSite(sites, observations []Point, cutoffM float64) []Correlation {
	matches := make([]Correlation, 0, len(observations))
	if len(sites) == 0 || len(observations) == 0 {
		return matches
	}

	for oi, op := range observations {
		if !op.Valid {
			continue
		}
		best := -1
		bestDist := math.Inf(1)
		for si, sp := range sites {
			if !sp.Valid {
				continue
			}
			if d := geo.Distance(sp.X, sp.Y, op.X, op.Y); d < bestDist {
				best = si
				bestDist = d
			}
		}
		if best < 0 || bestDist > cutoffM {
			continue
		}
		matches = append(matches, Correlation{
			SiteIndex:        best,
			ObservationIndex: oi,
			DistanceKM:       bestDist / 1000.0,
		})
	}
	return matches
}

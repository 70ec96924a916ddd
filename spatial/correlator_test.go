package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/georisk-api/geo"
	"github.com/bitmark-inc/georisk-api/schema"
)

func newTestCorrelator() *Correlator {
	return NewCorrelator(geo.NewEuropeProjector())
}

func site(lon, lat float64) schema.Site {
	return schema.Site{Location: schema.NewPoint(lon, lat)}
}

func observation(lon, lat float64) schema.HazardObservation {
	return schema.HazardObservation{Location: schema.NewPoint(lon, lat)}
}

func TestWithinRadiusManyToMany(t *testing.T) {
	c := newTestCorrelator()

	// two sites ~55 km apart, one observation between them: with a 100 km
	// radius the observation must contribute to both sites
	sites := c.ProjectSites([]schema.Site{
		site(10.0, 52.0),
		site(10.0, 52.5),
	})
	obs := c.ProjectObservations([]schema.HazardObservation{
		observation(10.0, 52.25),
	})

	matches := c.WithinRadius(sites, obs, 100000)
	assert.Len(t, matches, 2)
	assert.Len(t, matches[0], 1)
	assert.Len(t, matches[1], 1)
	assert.InDelta(t, 27.8, matches[0][0].DistanceKM, 1.0)
}

func TestWithinRadiusCutoff(t *testing.T) {
	c := newTestCorrelator()

	sites := c.ProjectSites([]schema.Site{site(10.0, 52.0)})
	obs := c.ProjectObservations([]schema.HazardObservation{
		observation(10.0, 52.2),  // ~22 km away
		observation(10.0, 54.0),  // ~222 km away
		observation(-20.0, 64.0), // far outside
	})

	matches := c.WithinRadius(sites, obs, 100000)
	assert.Len(t, matches[0], 1)
	assert.Equal(t, 0, matches[0][0].ObservationIndex)
}

func TestBufferContainedRecordsBuffer(t *testing.T) {
	c := newTestCorrelator()

	sites := c.ProjectSites([]schema.Site{site(10.0, 52.0)})
	obs := c.ProjectObservations([]schema.HazardObservation{
		observation(10.05, 52.0),
	})

	matches := c.BufferContained(sites, obs, 10000)
	assert.Len(t, matches[0], 1)
	assert.Equal(t, 10000.0, matches[0][0].BufferM)
	assert.True(t, matches[0][0].DistanceKM < 10)
}

func TestNearestSiteAssignsSingleOwner(t *testing.T) {
	c := newTestCorrelator()

	sites := c.ProjectSites([]schema.Site{
		site(10.0, 52.0),
		site(12.0, 52.0),
	})
	obs := c.ProjectObservations([]schema.HazardObservation{
		observation(10.1, 52.0), // close to the first site
		observation(11.9, 52.0), // close to the second site
		observation(25.0, 40.0), // beyond the cutoff
	})

	matches := c.NearestSite(sites, obs, 50000)
	assert.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].SiteIndex)
	assert.Equal(t, 1, matches[1].SiteIndex)
}

func TestEmptyInputsYieldEmptyCorrelations(t *testing.T) {
	c := newTestCorrelator()

	sites := c.ProjectSites([]schema.Site{site(10.0, 52.0)})

	assert.Empty(t, c.WithinRadius(nil, nil, 100000))
	assert.Empty(t, c.NearestSite(sites, nil, 100000))

	perSite := c.WithinRadius(sites, nil, 100000)
	assert.Len(t, perSite, 1)
	assert.Empty(t, perSite[0])
}

func TestInvalidGeometrySkipped(t *testing.T) {
	c := newTestCorrelator()

	sites := c.ProjectSites([]schema.Site{site(10.0, 52.0)})
	obs := c.ProjectObservations([]schema.HazardObservation{
		{Location: nil},
		{Location: &schema.GeoJSON{Type: "Point", Coordinates: []float64{10.0}}},
		observation(10.0, 52.01),
	})

	matches := c.WithinRadius(sites, obs, 100000)
	assert.Len(t, matches[0], 1)
	assert.Equal(t, 2, matches[0][0].ObservationIndex)
}

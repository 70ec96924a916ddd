package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/georisk-api/schema"
)

func TestSelfCheck(t *testing.T) {
	p := NewEuropeProjector()
	assert.NoError(t, p.SelfCheck())
}

func TestParisLondonDistance(t *testing.T) {
	p := NewEuropeProjector()

	px, py := p.ToMetric(schema.Location{Latitude: 48.8566, Longitude: 2.3522})
	lx, ly := p.ToMetric(schema.Location{Latitude: 51.5074, Longitude: -0.1276})

	km := Distance(px, py, lx, ly) / 1000.0
	assert.True(t, km >= 330 && km <= 360, "Paris-London resolved to %.1f km", km)
}

func TestRoundTrip(t *testing.T) {
	p := NewEuropeProjector()

	locations := []schema.Location{
		{Latitude: 52.0, Longitude: 10.0},
		{Latitude: 41.9028, Longitude: 12.4964},
		{Latitude: 64.1466, Longitude: -21.9426},
		{Latitude: 36.7213, Longitude: -4.4214},
		{Latitude: 37.9838, Longitude: 23.7275},
	}

	for _, loc := range locations {
		x, y := p.ToMetric(loc)
		back := p.ToStorage(x, y)
		bx, by := p.ToMetric(back)
		assert.InDelta(t, 0, Distance(x, y, bx, by), 1.0, "round-trip drift at %+v", loc)
	}
}

func TestProjectionCenter(t *testing.T) {
	p := NewEuropeProjector()

	x, y := p.ToMetric(schema.Location{Latitude: 52.0, Longitude: 10.0})
	assert.InDelta(t, 4321000.0, x, 1e-6)
	assert.InDelta(t, 3210000.0, y, 1e-6)

	back := p.ToStorage(4321000.0, 3210000.0)
	assert.InDelta(t, 52.0, back.Latitude, 1e-9)
	assert.InDelta(t, 10.0, back.Longitude, 1e-9)
}

func TestDistanceSymmetry(t *testing.T) {
	if d := Distance(0, 0, 3, 4); math.Abs(d-5) > 1e-12 {
		t.Fatalf("expected 5, got %f", d)
	}
	assert.Equal(t, Distance(1, 2, 5, 9), Distance(5, 9, 1, 2))
}

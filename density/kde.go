// Package density fits a kernel density surface over projected urban
// feature centroids, yielding a relative clustering intensity per feature.
package density

import (
	"fmt"
	"math"

	"github.com/bitmark-inc/georisk-api/schema"
	"github.com/bitmark-inc/georisk-api/spatial"
)

const (
	// DefaultBandwidthM is the kernel bandwidth in meters on the metric
	// plane.
	DefaultBandwidthM = 1000.0
)

// Estimator is a fixed-bandwidth Gaussian kernel density estimator over
// points on the metric plane.
type Estimator struct {
	bandwidth float64
}

func NewEstimator(bandwidthM float64) (*Estimator, error) {
	if bandwidthM <= 0 || math.IsNaN(bandwidthM) || math.IsInf(bandwidthM, 0) {
		return nil, &schema.ConfigurationError{Reason: fmt.Sprintf("kde bandwidth must be positive, got %f", bandwidthM)}
	}
	return &Estimator{bandwidth: bandwidthM}, nil
}

// Densities evaluates the fitted surface at every input point. Invalid
// points neither contribute mass nor receive a density. The output is a
// probability density per square meter, so values are tiny in absolute
// terms; only their relative ordering matters for hotspot ranking.
func (e *Estimator) Densities(points []spatial.Point) []float64 {
	densities := make([]float64, len(points))

	valid := make([]spatial.Point, 0, len(points))
	for _, p := range points {
		if p.Valid {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return densities
	}

	h2 := e.bandwidth * e.bandwidth
	norm := 1.0 / (float64(len(valid)) * 2 * math.Pi * h2)

	for i, p := range points {
		if !p.Valid {
			continue
		}
		var sum float64
		for _, q := range valid {
			dx := p.X - q.X
			dy := p.Y - q.Y
			sum += math.Exp(-(dx*dx + dy*dy) / (2 * h2))
		}
		densities[i] = norm * sum
	}
	return densities
}

package score

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/bitmark-inc/georisk-api/schema"
)

const (
	// distances below 100 m are clamped to avoid division blow-ups for
	// observations almost on top of a site
	minDistanceKM = 0.1

	seismicEnergyExponent = 1.5
	tempSigmaThreshold    = 2.0
	precipSigmaThreshold  = 3.0
	coastalElevationScale = 10.0
)

// CorrelatedObservation is one observation joined to a site with its metric
// distance, the unit every radius-based calculator consumes.
type CorrelatedObservation struct {
	Observation schema.HazardObservation
	DistanceKM  float64
}

// finite replaces NaN and infinities with 0 so a single bad measurement
// cannot poison a site's raw magnitude. The replacement is logged and never
// fatal.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		log.WithField("prefix", "score").Debug("non-finite measurement replaced with 0")
		return 0
	}
	return v
}

// UrbanDensityRaw reduces buffer-contained urban features into the raw
// density magnitude: featureCount + totalBuildingFootprintM2 / 1e6.
func UrbanDensityRaw(correlated []CorrelatedObservation) (float64, int) {
	var areaM2 float64
	for _, c := range correlated {
		if c.Observation.FeatureType == schema.FeatureTypeBuilding {
			areaM2 += finite(c.Observation.FootprintAreaM2)
		}
	}
	count := len(correlated)
	return float64(count) + areaM2/1e6, count
}

// ClimateAnomalyRaw computes the extreme-day ratio of a site's climate
// time series: days where max temperature exceeds mean+2 sigma or
// precipitation exceeds mean+3 sigma, over total days.
func ClimateAnomalyRaw(samples []schema.HazardObservation) (raw float64, extremeDays, totalDays int) {
	totalDays = len(samples)
	if totalDays == 0 {
		return 0, 0, 0
	}

	temps := make([]float64, totalDays)
	precips := make([]float64, totalDays)
	for i, s := range samples {
		temps[i] = finite(s.TempMaxC)
		precips[i] = finite(s.PrecipitationMM)
	}

	tempMean, tempStd := meanStddev(temps)
	precipMean, precipStd := meanStddev(precips)

	for i := range samples {
		if temps[i] > tempMean+tempSigmaThreshold*tempStd ||
			precips[i] > precipMean+precipSigmaThreshold*precipStd {
			extremeDays++
		}
	}

	return float64(extremeDays) / float64(totalDays), extremeDays, totalDays
}

// SeismicEnergyRaw sums Gutenberg-Richter energy contributions of all
// radius-correlated events: 10^(1.5*magnitude) / max(distanceKm, 0.1)^2.
func SeismicEnergyRaw(correlated []CorrelatedObservation) float64 {
	var total float64
	for _, c := range correlated {
		d := math.Max(c.DistanceKM, minDistanceKM)
		total += math.Pow(10, seismicEnergyExponent*finite(c.Observation.Magnitude)) / (d * d)
	}
	return finite(total)
}

// FireRiskRaw sums radiative power weighted by detection confidence and
// inverse distance over all radius-correlated fire detections.
func FireRiskRaw(correlated []CorrelatedObservation) float64 {
	var total float64
	for _, c := range correlated {
		d := math.Max(c.DistanceKM, minDistanceKM)
		confidence := float64(c.Observation.Confidence) / 100.0
		total += finite(c.Observation.RadiativePower) * confidence / d
	}
	return finite(total)
}

// FloodRiskRaw mixes nearby-sample count and mean flood intensity half and
// half over all radius-correlated flood samples.
func FloodRiskRaw(correlated []CorrelatedObservation) float64 {
	if len(correlated) == 0 {
		return 0
	}
	var intensity float64
	for _, c := range correlated {
		intensity += finite(c.Observation.FloodIntensity)
	}
	mean := intensity / float64(len(correlated))
	return 0.5*float64(len(correlated)) + 0.5*mean
}

// CoastalRisk derives directly from site elevation: max(0, 1-elevation/10)
// clamped to [0,1]. Sites below sea level score 1.0, sites with unknown
// elevation score 0. The result is already bounded and skips normalization.
func CoastalRisk(elevationM *float64) float64 {
	if elevationM == nil {
		return 0
	}
	e := finite(*elevationM)
	if e <= 0 {
		return 1.0
	}
	return Clamp01(1.0 - e/coastalElevationScale)
}

func meanStddev(values []float64) (float64, float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	if len(values) < 2 {
		return mean, 0
	}

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / (n - 1))
}

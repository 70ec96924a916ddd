package score

import (
	"github.com/bitmark-inc/georisk-api/schema"
)

// Composite combines the six normalized sub-scores into the single
// comparable risk value: the weighted sum clipped into [0,1]. Weights must
// have been validated before a run starts.
func Composite(w schema.RiskWeights, urban, climate, seismic, fire, flood, coastal float64) float64 {
	total := w.UrbanDensity*Clamp01(urban) +
		w.ClimateAnomaly*Clamp01(climate) +
		w.SeismicRisk*Clamp01(seismic) +
		w.FireRisk*Clamp01(fire) +
		w.FloodRisk*Clamp01(flood) +
		w.CoastalRisk*Clamp01(coastal)
	return Clamp01(total)
}

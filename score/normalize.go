package score

import (
	"math"
)

// NormalizationRange reports the observed log-space bounds of one raw
// magnitude column, surfaced in the run summary.
type NormalizationRange struct {
	LogMin float64 `json:"log_min"`
	LogMax float64 `json:"log_max"`
}

// LogMinMax maps a non-negative raw magnitude column onto [0,1]. Raw
// magnitudes can span several orders of magnitude, so log1p is applied
// first and the linear min-max rescale operates in log space; a direct
// rescale would let a single extreme outlier crush every other site
// toward 0. Missing or non-finite raw values count as 0. A column that is
// entirely zero normalizes to all zeros.
func LogMinMax(raw []float64) ([]float64, NormalizationRange) {
	scores := make([]float64, len(raw))
	if len(raw) == 0 {
		return scores, NormalizationRange{}
	}

	logs := make([]float64, len(raw))
	allZero := true
	for i, v := range raw {
		v = finite(v)
		if v < 0 {
			v = 0
		}
		if v > 0 {
			allZero = false
		}
		logs[i] = math.Log1p(v)
	}
	if allZero {
		return scores, NormalizationRange{}
	}

	lo, hi := logs[0], logs[0]
	for _, l := range logs[1:] {
		if l < lo {
			lo = l
		}
		if l > hi {
			hi = l
		}
	}

	r := NormalizationRange{LogMin: lo, LogMax: hi}
	if hi == lo {
		// degenerate constant column, nothing to spread
		return scores, r
	}

	for i, l := range logs {
		scores[i] = Clamp01((l - lo) / (hi - lo))
	}
	return scores, r
}

// Clamp01 clips a value into [0,1] and flattens non-finite input to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

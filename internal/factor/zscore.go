package factor

import (
	"math"

	"github.com/sawpanic/macrorun/internal/series"
)

// ZScoreConfig controls rolling normalization.
type ZScoreConfig struct {
	Window     int `yaml:"window"`      // trailing rows per estimate
	MinPeriods int `yaml:"min_periods"` // 0 means max(12, window/4)
}

// DefaultZScoreConfig matches the standard 90-row window with a
// max(12, window/4) floor.
func DefaultZScoreConfig() ZScoreConfig {
	return ZScoreConfig{Window: 90}
}

func (c ZScoreConfig) minPeriods() int {
	if c.MinPeriods > 0 {
		return c.MinPeriods
	}
	mp := c.Window / 4
	if mp < 12 {
		mp = 12
	}
	return mp
}

// RollZScore normalizes x against its own trailing window: at each row,
// (x[t] - mean) / std over the window ending at t, where mean and std use
// only the non-missing values in the window. Std is the sample standard
// deviation (ddof=1). A row is missing until the min-periods floor is met,
// and whenever the window std is zero or undefined: a flat window yields
// missing, never an infinity.
func RollZScore(x []float64, cfg ZScoreConfig) []float64 {
	mp := cfg.minPeriods()
	out := make([]float64, len(x))

	for t := range x {
		out[t] = series.Missing()
		if series.IsMissing(x[t]) {
			continue
		}

		lo := t - cfg.Window + 1
		if lo < 0 {
			lo = 0
		}
		var sum float64
		n := 0
		for i := lo; i <= t; i++ {
			if series.IsMissing(x[i]) {
				continue
			}
			sum += x[i]
			n++
		}
		if n < mp || n < 2 {
			continue
		}
		mean := sum / float64(n)

		// Two-pass variance so a flat window is exactly zero.
		var ss float64
		for i := lo; i <= t; i++ {
			if series.IsMissing(x[i]) {
				continue
			}
			d := x[i] - mean
			ss += d * d
		}
		variance := ss / float64(n-1)
		if variance <= 0 {
			continue
		}
		sd := math.Sqrt(variance)
		out[t] = (x[t] - mean) / sd
	}
	return out
}

package factor

import (
	"fmt"
	"sort"

	"github.com/sawpanic/macrorun/internal/align"
	"github.com/sawpanic/macrorun/internal/series"
)

// WeightTable maps input column names to their composite weights.
type WeightTable map[string]float64

// CompositeConfig names one composite index and fixes its inputs.
type CompositeConfig struct {
	Name    string      `yaml:"name"`
	Weights WeightTable `yaml:"weights"`
	// MinCoverage optionally gates emission: the minimum number of inputs
	// that must be present at a row before a value is produced. Zero keeps
	// the baseline drop-missing behavior.
	MinCoverage int `yaml:"min_coverage"`
}

// Validate rejects tables a run cannot work with.
func (c CompositeConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("composite: name required")
	}
	if len(c.Weights) == 0 {
		return fmt.Errorf("composite %s: empty weight table", c.Name)
	}
	if c.MinCoverage > len(c.Weights) {
		return fmt.Errorf("composite %s: min_coverage %d exceeds %d inputs", c.Name, c.MinCoverage, len(c.Weights))
	}
	return nil
}

// Composite computes a weighted composite of rolling z-scores. For each
// calendar row it averages weight*z over the inputs present at that row;
// inputs missing there are excluded from both the sum and the divisor, not
// treated as zero. Inputs whose column is absent from the frame entirely
// are skipped. The result is missing where no input (or fewer than
// MinCoverage inputs) survives.
func Composite(f *align.Frame, cfg CompositeConfig, z ZScoreConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Deterministic input order; the mean is commutative so order only
	// affects float rounding, but stable output beats flaky diffs.
	names := make([]string, 0, len(cfg.Weights))
	for name := range cfg.Weights {
		if f.Has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]float64, f.Rows())
	for i := range out {
		out[i] = series.Missing()
	}
	if len(names) == 0 {
		return out, nil
	}

	scored := make(map[string][]float64, len(names))
	for _, name := range names {
		col, _ := f.Column(name)
		scored[name] = RollZScore(col, z)
	}
	return CombineZ(scored, cfg), nil
}

// CombineZ row-wise averages weight*z over already-normalized columns.
// Split out from Composite so the drop-missing mean is testable against
// hand-built z columns. Columns of unequal length are truncated to the
// shortest weighted one rather than read out of bounds.
func CombineZ(zcols map[string][]float64, cfg CompositeConfig) []float64 {
	names := make([]string, 0, len(zcols))
	rows := -1
	for name, col := range zcols {
		if _, weighted := cfg.Weights[name]; !weighted {
			continue
		}
		names = append(names, name)
		if rows < 0 || len(col) < rows {
			rows = len(col)
		}
	}
	sort.Strings(names)
	if rows < 0 {
		rows = 0
	}

	minCov := cfg.MinCoverage
	if minCov < 1 {
		minCov = 1
	}
	out := make([]float64, rows)
	for t := range out {
		var sum float64
		n := 0
		for _, name := range names {
			v := zcols[name][t]
			if series.IsMissing(v) {
				continue
			}
			sum += cfg.Weights[name] * v
			n++
		}
		if n >= minCov {
			out[t] = sum / float64(n)
		} else {
			out[t] = series.Missing()
		}
	}
	return out
}

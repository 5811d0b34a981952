// Package factor holds the derived-series math that runs over an aligned
// daily frame: spreads, n-period differences, rolling z-scores and the
// weighted composite indices built from them.
package factor

import (
	"fmt"

	"github.com/sawpanic/macrorun/internal/align"
	"github.com/sawpanic/macrorun/internal/series"
)

// Spread returns a-b elementwise over the frame. A row is missing whenever
// either input is missing there. Fails if either column is absent.
func Spread(f *align.Frame, a, b string) ([]float64, error) {
	ca, ok := f.Column(a)
	if !ok {
		return nil, fmt.Errorf("spread: column %s not in frame", a)
	}
	cb, ok := f.Column(b)
	if !ok {
		return nil, fmt.Errorf("spread: column %s not in frame", b)
	}

	out := make([]float64, len(ca))
	for i := range ca {
		if series.IsMissing(ca[i]) || series.IsMissing(cb[i]) {
			out[i] = series.Missing()
			continue
		}
		out[i] = ca[i] - cb[i]
	}
	return out, nil
}

// Diff returns x[t]-x[t-n], with n counted in calendar rows. The leading n
// rows are missing, as is any row where either operand is missing. A
// second-order difference is Diff applied twice.
func Diff(x []float64, n int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i < n || series.IsMissing(x[i]) || series.IsMissing(x[i-n]) {
			out[i] = series.Missing()
			continue
		}
		out[i] = x[i] - x[i-n]
	}
	return out
}

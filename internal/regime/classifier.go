// Package regime classifies each calendar day into one of four macro
// quadrants from the joint sign of a growth proxy and an inflation proxy.
package regime

import (
	"github.com/sawpanic/macrorun/internal/align"
	"github.com/sawpanic/macrorun/internal/factor"
	"github.com/sawpanic/macrorun/internal/series"
)

// Regime is the discrete growth/inflation quadrant for one day.
type Regime int

const (
	Undetermined   Regime = iota
	RiskOn                // growth up, inflation down
	Stagflation           // growth down, inflation up
	Reflation             // growth up, inflation up
	RecessionTrade        // growth down, inflation down
)

func (r Regime) String() string {
	switch r {
	case RiskOn:
		return "growth-up/inflation-down"
	case Stagflation:
		return "growth-down/inflation-up"
	case Reflation:
		return "growth-up/inflation-up"
	case RecessionTrade:
		return "growth-down/inflation-down"
	default:
		return "undetermined"
	}
}

// Classify maps one day's proxy pair to its quadrant. Either proxy missing
// means Undetermined.
//
// Sign convention: the growth proxy is built negated, so growth < 0 reads
// as growth accelerating. Do not flip it.
func Classify(growth, inflation float64) Regime {
	if series.IsMissing(growth) || series.IsMissing(inflation) {
		return Undetermined
	}
	growthUp := growth < 0
	inflationUp := inflation > 0
	switch {
	case growthUp && !inflationUp:
		return RiskOn
	case !growthUp && inflationUp:
		return Stagflation
	case growthUp && inflationUp:
		return Reflation
	default:
		return RecessionTrade
	}
}

// ProxyConfig fixes the frame columns and horizon the proxies are built
// from. The horizon is counted in calendar rows; 63 approximates one
// quarter.
type ProxyConfig struct {
	PayrollsColumn      string `yaml:"payrolls_column"`
	InitialClaimsColumn string `yaml:"initial_claims_column"`
	CPIColumn           string `yaml:"cpi_column"`
	PCEColumn           string `yaml:"pce_column"`
	DiffHorizon         int    `yaml:"diff_horizon"`

	ZScore factor.ZScoreConfig `yaml:"zscore"`
}

// DefaultProxyConfig uses the standard column names and quarter horizon.
func DefaultProxyConfig() ProxyConfig {
	return ProxyConfig{
		PayrollsColumn:      "nonfarm_payrolls",
		InitialClaimsColumn: "initial_claims",
		CPIColumn:           "cpi",
		PCEColumn:           "pce",
		DiffHorizon:         63,
		ZScore:              factor.DefaultZScoreConfig(),
	}
}

// Proxies computes the growth and inflation proxy columns over the frame:
//
//	growth    = -z(diff(payrolls, h)) + z(diff(initial_claims, h))
//	inflation =  z(diff(cpi, h))      + z(diff(pce, h))
//
// A proxy row is missing whenever either of its terms is missing,
// including the case of a source column absent from the frame entirely.
func Proxies(f *align.Frame, cfg ProxyConfig) (growth, inflation []float64) {
	zdiff := func(col string) []float64 {
		c, ok := f.Column(col)
		if !ok {
			missing := make([]float64, f.Rows())
			for i := range missing {
				missing[i] = series.Missing()
			}
			return missing
		}
		return factor.RollZScore(factor.Diff(c, cfg.DiffHorizon), cfg.ZScore)
	}

	payrolls := zdiff(cfg.PayrollsColumn)
	claims := zdiff(cfg.InitialClaimsColumn)
	cpi := zdiff(cfg.CPIColumn)
	pce := zdiff(cfg.PCEColumn)

	growth = make([]float64, f.Rows())
	inflation = make([]float64, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		growth[i] = addStrict(-payrolls[i], claims[i])
		inflation[i] = addStrict(cpi[i], pce[i])
	}
	return growth, inflation
}

// ClassifyAll maps proxy columns to one label per row.
func ClassifyAll(growth, inflation []float64) []Regime {
	out := make([]Regime, len(growth))
	for i := range growth {
		out[i] = Classify(growth[i], inflation[i])
	}
	return out
}

func addStrict(a, b float64) float64 {
	if series.IsMissing(a) || series.IsMissing(b) {
		return series.Missing()
	}
	return a + b
}

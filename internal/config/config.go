// Package config carries every policy table of a run (series catalog,
// spreads, watch-lists, composite weights) as explicit structs passed
// into the components, so concurrent runs with different policies cannot
// interfere.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sawpanic/macrorun/internal/dashboard"
	"github.com/sawpanic/macrorun/internal/factor"
	"github.com/sawpanic/macrorun/internal/fred"
	"github.com/sawpanic/macrorun/internal/regime"
)

// APIKeyEnv is the environment variable holding the FRED credential.
// Absence is a fatal precondition, checked before any fetch.
const APIKeyEnv = "FRED_API_KEY"

// SpreadSpec names one derived spread: Minuend - Subtrahend.
type SpreadSpec struct {
	Name       string `yaml:"name"`
	Minuend    string `yaml:"minuend"`
	Subtrahend string `yaml:"subtrahend"`
}

// Config is the full run configuration.
type Config struct {
	OutputDir  string `yaml:"output_dir"`
	StartDate  string `yaml:"start_date"` // inclusive fetch start, YYYY-MM-DD
	WindowDays int    `yaml:"window_days"`
	// Concurrency bounds the fetch worker pool.
	Concurrency int `yaml:"concurrency"`
	// RedisAddr enables the observation cache when non-empty.
	RedisAddr string `yaml:"redis_addr"`

	// Series maps indicator names to FRED series codes.
	Series map[string]string `yaml:"series"`

	Spreads []SpreadSpec `yaml:"spreads"`
	// DiffColumns get first and second differences at DiffHorizon rows.
	DiffColumns []string `yaml:"diff_columns"`
	DiffHorizon int      `yaml:"diff_horizon"`

	ZScore     factor.ZScoreConfig      `yaml:"zscore"`
	Composites []factor.CompositeConfig `yaml:"composites"`
	Proxy      regime.ProxyConfig       `yaml:"proxy"`
	Status     dashboard.StatusConfig   `yaml:"status"`
	Fred       fred.ClientConfig        `yaml:"fred"`
}

// Default returns the standard catalog and policy tables.
func Default() *Config {
	return &Config{
		OutputDir:   "out/macro",
		StartDate:   "2000-01-01",
		WindowDays:  900,
		Concurrency: 4,
		Series: map[string]string{
			"cpi":                   "CPIAUCSL",
			"pce":                   "PCEPI",
			"unemployment_rate":     "UNRATE",
			"nonfarm_payrolls":      "PAYEMS",
			"retail_sales":          "RSAFS",
			"industrial_production": "INDPRO",
			"cfnai":                 "CFNAI",
			"mortgage_30y":          "MORTGAGE30US",
			"treasury_2y":           "DGS2",
			"treasury_10y":          "DGS10",
			"tbill_3m":              "TB3MS",
			"real_10y":              "DFII10",
			"baa":                   "BAA",
			"aaa":                   "AAA",
			"initial_claims":        "ICSA",
			"fed_funds":             "FEDFUNDS",
		},
		Spreads: []SpreadSpec{
			{Name: "spread_10y_2y", Minuend: "treasury_10y", Subtrahend: "treasury_2y"},
			{Name: "spread_10y_3m", Minuend: "treasury_10y", Subtrahend: "tbill_3m"},
			{Name: "credit_spread", Minuend: "baa", Subtrahend: "aaa"},
		},
		DiffColumns: []string{
			"cpi", "pce", "unemployment_rate", "initial_claims",
			"credit_spread", "spread_10y_2y",
		},
		DiffHorizon: 21,
		ZScore:      factor.DefaultZScoreConfig(),
		Composites: []factor.CompositeConfig{
			{
				Name: "risk_off_index",
				Weights: factor.WeightTable{
					"initial_claims": 1.0,
					"cfnai":          -1.0,
					"credit_spread":  1.2,
					"spread_10y_3m":  -1.0,
				},
			},
			{
				Name: "policy_tightness_index",
				Weights: factor.WeightTable{
					"fed_funds":     1.0,
					"spread_10y_2y": -0.8,
					"credit_spread": 1.0,
					"real_10y":      0.8,
				},
			},
		},
		Proxy: regime.DefaultProxyConfig(),
		Status: dashboard.StatusConfig{
			CautionWatch: []string{
				"unemployment_rate", "initial_claims", "credit_spread",
				"fed_funds", "real_10y",
			},
			AlertWatch:     []string{"credit_spread", "initial_claims"},
			InversionAlert: []string{"spread_10y_2y", "spread_10y_3m"},
		},
		Fred: fred.DefaultClientConfig(),
	}
}

// Load returns the defaults overlaid with the YAML file at path; an empty
// path keeps the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveAPIKey pulls the FRED credential from the environment.
func (c *Config) ResolveAPIKey() error {
	key := os.Getenv(APIKeyEnv)
	if key == "" {
		return fmt.Errorf("config: %s is not set", APIKeyEnv)
	}
	c.Fred.APIKey = key
	return nil
}

// Start parses the configured fetch start date.
func (c *Config) Start() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", c.StartDate, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}

// Validate rejects configurations no run can proceed with. Everything it
// flags is fatal; per-series data problems are degraded later instead.
func (c *Config) Validate() error {
	if len(c.Series) == 0 {
		return fmt.Errorf("config: empty series catalog")
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("config: window_days must be positive, got %d", c.WindowDays)
	}
	if c.DiffHorizon <= 0 {
		return fmt.Errorf("config: diff_horizon must be positive, got %d", c.DiffHorizon)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("config: concurrency must be positive, got %d", c.Concurrency)
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	if len(c.Composites) == 0 {
		return fmt.Errorf("config: no composite indices configured")
	}
	for _, comp := range c.Composites {
		if err := comp.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	for _, sp := range c.Spreads {
		if sp.Name == "" || sp.Minuend == "" || sp.Subtrahend == "" {
			return fmt.Errorf("config: spread %+v incomplete", sp)
		}
	}
	return nil
}

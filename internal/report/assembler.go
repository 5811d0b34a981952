// Package report renders the run's outputs: dashboard table, daily
// feature table, markdown snapshot. Formatting only; all numbers arrive
// computed.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sawpanic/macrorun/internal/align"
	"github.com/sawpanic/macrorun/internal/dashboard"
	"github.com/sawpanic/macrorun/internal/regime"
	"github.com/sawpanic/macrorun/internal/series"
)

// NotAvailable is the marker rendered for any undefined cell. Never zero.
const NotAvailable = "n/a"

func cell(v float64, prec int) string {
	if series.IsMissing(v) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// DashboardTable renders dashboard rows as CSV header + records.
func DashboardTable(rows []dashboard.Row) (header []string, records [][]string) {
	header = []string{"indicator", "latest", "change_1m", "change_3m", "change_12m", "status", "as_of"}
	records = make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Indicator,
			cell(r.Changes.Latest, 4),
			cell(r.Changes.Change1M, 4),
			cell(r.Changes.Change3M, 4),
			cell(r.Changes.Change12M, 4),
			r.Status.String(),
			r.AsOf.Format("2006-01-02"),
		})
	}
	return header, records
}

// FeatureTable renders the aligned frame as CSV: one row per calendar day,
// one column per series, plus the regime label. The regimes slice may be
// nil when classification was skipped.
func FeatureTable(f *align.Frame, regimes []regime.Regime) (header []string, records [][]string) {
	cols := f.Columns()
	header = append([]string{"date"}, cols...)
	if regimes != nil {
		header = append(header, "regime")
	}

	records = make([][]string, 0, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		rec := make([]string, 0, len(header))
		rec = append(rec, f.Date(i).Format("2006-01-02"))
		for _, name := range cols {
			col, _ := f.Column(name)
			rec = append(rec, cell(col[i], -1))
		}
		if regimes != nil {
			if regimes[i] == regime.Undetermined {
				rec = append(rec, NotAvailable)
			} else {
				rec = append(rec, regimes[i].String())
			}
		}
		records = append(records, rec)
	}
	return header, records
}

// CompositeValue is one composite's latest reading for the snapshot.
type CompositeValue struct {
	Name  string
	Value float64
}

// Snapshot is everything the narrative needs.
type Snapshot struct {
	RunID       string
	GeneratedAt time.Time
	WindowDays  int
	AsOf        time.Time // day the composite readings refer to
	Composites  []CompositeValue
	Regime      regime.Regime
	// Seeded is false when no calendar day had every composite defined;
	// the narrative then reports insufficient data instead of numbers.
	Seeded bool
	// Skipped lists series that failed to fetch and were omitted.
	Skipped []string
}

// Markdown renders the snapshot narrative.
func Markdown(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Macro regime snapshot\n\n")
	fmt.Fprintf(&b, "run: %s  \ngenerated (UTC): %s  \nwindow: %d days\n\n", s.RunID, s.GeneratedAt.UTC().Format("2006-01-02 15:04:05"), s.WindowDays)

	fmt.Fprintf(&b, "## Current state\n\n")
	if !s.Seeded {
		fmt.Fprintf(&b, "insufficient data: no day in the window has every composite defined; extend the history or window.\n")
	} else {
		fmt.Fprintf(&b, "as of %s:\n\n", s.AsOf.Format("2006-01-02"))
		for _, c := range s.Composites {
			fmt.Fprintf(&b, "- %s: **%.2f**\n", c.Name, c.Value)
		}
		fmt.Fprintf(&b, "- regime: **%s**\n", s.Regime)
	}

	if len(s.Skipped) > 0 {
		fmt.Fprintf(&b, "\n## Degraded inputs\n\n")
		for _, name := range s.Skipped {
			fmt.Fprintf(&b, "- %s: no data this run\n", name)
		}
	}

	fmt.Fprintf(&b, "\n## Artifacts\n\n- `macro_dashboard_latest.csv`\n- `macro_daily_features.csv`\n")
	return b.String()
}

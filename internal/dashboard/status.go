// Package dashboard turns per-indicator change sets into traffic-light
// rows for the snapshot table.
package dashboard

import (
	"sort"
	"time"

	"github.com/sawpanic/macrorun/internal/series"
)

// Status is the per-indicator traffic light.
type Status int

const (
	Normal Status = iota
	Caution
	Alert
)

func (s Status) String() string {
	switch s {
	case Caution:
		return "caution"
	case Alert:
		return "alert"
	default:
		return "normal"
	}
}

// StatusConfig holds the watch-lists driving escalation. Membership, not
// hardcoded indicator names, carries the policy so callers can override
// it per run.
type StatusConfig struct {
	// CautionWatch escalates to caution when the 3-month change is positive.
	CautionWatch []string `yaml:"caution_watch"`
	// AlertWatch escalates to alert when both 1-month and 3-month changes
	// are positive.
	AlertWatch []string `yaml:"alert_watch"`
	// InversionAlert flags spread-like indicators whenever the latest
	// value is negative, regardless of change direction.
	InversionAlert []string `yaml:"inversion_alert"`
}

// Rule is one predicate-to-status entry of the escalation table.
type Rule struct {
	Name    string
	Status  Status
	Applies func(indicator string, cs series.ChangeSet) bool
}

// Policy evaluates the escalation rule table uniformly; the highest
// matching status wins, default Normal.
type Policy struct {
	rules []Rule
}

// NewPolicy builds the standard three-rule table from the configured
// watch-lists.
func NewPolicy(cfg StatusConfig) *Policy {
	member := func(list []string) map[string]bool {
		m := make(map[string]bool, len(list))
		for _, name := range list {
			m[name] = true
		}
		return m
	}
	caution := member(cfg.CautionWatch)
	alert := member(cfg.AlertWatch)
	inverted := member(cfg.InversionAlert)

	pos := func(v float64) bool { return !series.IsMissing(v) && v > 0 }

	return &Policy{rules: []Rule{
		{
			Name:   "watchlist_3m_rising",
			Status: Caution,
			Applies: func(ind string, cs series.ChangeSet) bool {
				return caution[ind] && pos(cs.Change3M)
			},
		},
		{
			Name:   "watchlist_1m_and_3m_rising",
			Status: Alert,
			Applies: func(ind string, cs series.ChangeSet) bool {
				return alert[ind] && pos(cs.Change1M) && pos(cs.Change3M)
			},
		},
		{
			Name:   "spread_inverted",
			Status: Alert,
			Applies: func(ind string, cs series.ChangeSet) bool {
				return inverted[ind] && !series.IsMissing(cs.Latest) && cs.Latest < 0
			},
		},
	}}
}

// Evaluate runs every rule and returns the highest matching status.
func (p *Policy) Evaluate(indicator string, cs series.ChangeSet) Status {
	status := Normal
	for _, r := range p.rules {
		if r.Applies(indicator, cs) && r.Status > status {
			status = r.Status
		}
	}
	return status
}

// Row is one dashboard line: latest value, the three lookback changes,
// status, and the as-of date of the latest observation.
type Row struct {
	Indicator string           `json:"indicator"`
	Changes   series.ChangeSet `json:"changes"`
	Status    Status           `json:"status"`
	AsOf      time.Time        `json:"as_of"`
}

// Build assembles one row per indicator, sorted by indicator name.
func Build(changes map[string]series.ChangeSet, policy *Policy) []Row {
	rows := make([]Row, 0, len(changes))
	for name, cs := range changes {
		rows = append(rows, Row{
			Indicator: name,
			Changes:   cs,
			Status:    policy.Evaluate(name, cs),
			AsOf:      cs.AsOf,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Indicator < rows[j].Indicator })
	return rows
}

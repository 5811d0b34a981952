package series

import (
	"time"
)

// ChangeSet carries the latest observation of a series and its change over
// the standard 1/3/12 month lookbacks. Deltas are Missing() when the series
// has no observation at or before the lookback target date.
type ChangeSet struct {
	Latest    float64   `json:"latest"`
	AsOf      time.Time `json:"as_of"`
	Change1M  float64   `json:"change_1m"`
	Change3M  float64   `json:"change_3m"`
	Change12M float64   `json:"change_12m"`
}

// Changes computes the latest value and its 1/3/12-month deltas.
//
// The "previous" value for an N-month lookback is the last observation at
// or before latest_date minus N months, never an interpolation. That keeps
// monthly series (CPI and friends) comparable against an arbitrary latest
// date. A lookback with no such observation yields a Missing delta.
func Changes(s *Series) (ChangeSet, error) {
	last, err := s.Last()
	if err != nil {
		return ChangeSet{}, err
	}

	delta := func(months int) float64 {
		prev := s.At(monthsBefore(last.Date, months))
		if IsMissing(prev) {
			return Missing()
		}
		return last.Value - prev
	}

	return ChangeSet{
		Latest:    last.Value,
		AsOf:      last.Date,
		Change1M:  delta(1),
		Change3M:  delta(3),
		Change12M: delta(12),
	}, nil
}

// monthsBefore shifts t back n months, clamping to the last day of the
// target month when t's day does not exist there: Mar 31 minus one month
// is Feb 29 (or 28), not Mar 2. AddDate alone would normalize forward.
func monthsBefore(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

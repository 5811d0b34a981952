// Package align reindexes irregularly-sampled macro series onto a single
// dense daily calendar so downstream factor math can operate row-wise.
package align

import (
	"fmt"
	"time"

	"github.com/sawpanic/macrorun/internal/series"
)

// Frame is a dense daily table: one row per calendar day, one column per
// series. Cells with no observation carry the missing marker.
type Frame struct {
	index []time.Time
	cols  map[string][]float64
	order []string
}

// NewFrame builds an empty frame over a contiguous daily calendar of
// windowDays rows ending at asOf (UTC, date-truncated).
func NewFrame(windowDays int, asOf time.Time) *Frame {
	end := asOf.UTC().Truncate(24 * time.Hour)
	index := make([]time.Time, windowDays)
	for i := range index {
		index[i] = end.AddDate(0, 0, i-(windowDays-1))
	}
	return &Frame{index: index, cols: make(map[string][]float64)}
}

// Rows returns the number of calendar days in the frame.
func (f *Frame) Rows() int { return len(f.index) }

// Index returns the calendar, ascending.
func (f *Frame) Index() []time.Time { return f.index }

// Date returns the calendar day at row i.
func (f *Frame) Date(i int) time.Time { return f.index[i] }

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the named column's values, one per calendar row.
func (f *Frame) Column(name string) ([]float64, bool) {
	c, ok := f.cols[name]
	return c, ok
}

// Set installs (or replaces) a column. The slice length must match the
// calendar.
func (f *Frame) Set(name string, values []float64) error {
	if len(values) != len(f.index) {
		return fmt.Errorf("column %s: %d values for %d calendar rows", name, len(values), len(f.index))
	}
	if _, exists := f.cols[name]; !exists {
		f.order = append(f.order, name)
	}
	f.cols[name] = values
	return nil
}

// Reindex forward-fills one series onto the frame's calendar: a value
// observed on day T is carried to every later row until superseded; rows
// before the first observation stay missing. Never back-fills.
func (f *Frame) Reindex(s *series.Series) []float64 {
	out := make([]float64, len(f.index))
	cur := series.Missing()
	j := 0
	for i, day := range f.index {
		for j < len(s.Points) && !s.Points[j].Date.After(day) {
			cur = s.Points[j].Value
			j++
		}
		out[i] = cur
	}
	return out
}

// Align builds a frame of windowDays days ending at asOf and forward-fills
// every series in the map onto it, in sorted-name order so output layout is
// deterministic. Empty series contribute no column.
func Align(store *series.Store, windowDays int, asOf time.Time) (*Frame, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("align: window must be positive, got %d", windowDays)
	}
	f := NewFrame(windowDays, asOf)
	for _, name := range store.Names() {
		s, _ := store.Get(name)
		if err := f.Set(name, f.Reindex(s)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

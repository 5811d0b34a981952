package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series holds one macro indicator: a human-readable name, its FRED code,
// and observations sorted ascending by date with no duplicates.
// A Series is immutable once built.
type Series struct {
	Name   string  `json:"name"`
	Code   string  `json:"code"`
	Points []Point `json:"points"`
}

// Missing is the marker for an absent value. All derived math in this
// module propagates it; it must never be coerced to zero.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// New builds a Series from raw points: sorts ascending, drops missing
// values and collapses duplicate dates keeping the last one seen.
func New(name, code string, points []Point) *Series {
	kept := make([]Point, 0, len(points))
	for _, p := range points {
		if IsMissing(p.Value) {
			continue
		}
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })

	deduped := kept[:0]
	for _, p := range kept {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}

	return &Series{Name: name, Code: code, Points: deduped}
}

// Empty reports whether the series carries no observations.
func (s *Series) Empty() bool { return s == nil || len(s.Points) == 0 }

// Last returns the most recent observation.
func (s *Series) Last() (Point, error) {
	if s.Empty() {
		return Point{}, fmt.Errorf("series %s: no observations", s.Name)
	}
	return s.Points[len(s.Points)-1], nil
}

// At returns the last observation dated at or before t, or missing if the
// series has no observation that early.
func (s *Series) At(t time.Time) float64 {
	if s.Empty() {
		return Missing()
	}
	// First index strictly after t; the answer is the point before it.
	i := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Date.After(t) })
	if i == 0 {
		return Missing()
	}
	return s.Points[i-1].Value
}

// Store is an immutable by-name collection of fetched series. Raw series
// and derived factors are kept in separate stores so provenance stays
// explicit.
type Store struct {
	byName map[string]*Series
	names  []string
}

// NewStore builds a store from fetched series, skipping empty ones.
func NewStore(all []*Series) *Store {
	st := &Store{byName: make(map[string]*Series, len(all))}
	for _, s := range all {
		if s.Empty() {
			continue
		}
		if _, dup := st.byName[s.Name]; !dup {
			st.names = append(st.names, s.Name)
		}
		st.byName[s.Name] = s
	}
	sort.Strings(st.names)
	return st
}

// Get returns the named series and whether it exists.
func (st *Store) Get(name string) (*Series, bool) {
	s, ok := st.byName[name]
	return s, ok
}

// Names returns all series names in sorted order.
func (st *Store) Names() []string {
	out := make([]string, len(st.names))
	copy(out, st.names)
	return out
}

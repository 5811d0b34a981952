package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_SortsDedupesAndDropsMissing(t *testing.T) {
	s := New("test", "TEST", []Point{
		{Date: day(2024, 3, 1), Value: 3.0},
		{Date: day(2024, 1, 1), Value: 1.0},
		{Date: day(2024, 2, 1), Value: math.NaN()},
		{Date: day(2024, 1, 1), Value: 1.5}, // duplicate date, last wins
	})

	require.Len(t, s.Points, 2)
	assert.Equal(t, 1.5, s.Points[0].Value)
	assert.Equal(t, day(2024, 1, 1), s.Points[0].Date)
	assert.Equal(t, 3.0, s.Points[1].Value)
}

func TestAt_NearestBeforeOrEqual(t *testing.T) {
	s := New("test", "TEST", []Point{
		{Date: day(2024, 1, 10), Value: 10},
		{Date: day(2024, 2, 10), Value: 20},
	})

	assert.Equal(t, 10.0, s.At(day(2024, 1, 10)), "exact hit")
	assert.Equal(t, 10.0, s.At(day(2024, 2, 9)), "between observations carries earlier one")
	assert.Equal(t, 20.0, s.At(day(2024, 12, 31)))
	assert.True(t, IsMissing(s.At(day(2024, 1, 9))), "before first observation is missing")
}

func TestChanges_MonthlyRampFixture(t *testing.T) {
	// 25 monthly points 100..124 starting Jan 2022.
	pts := make([]Point, 0, 25)
	for i := 0; i < 25; i++ {
		pts = append(pts, Point{Date: day(2022, 1, 1).AddDate(0, i, 0), Value: 100 + float64(i)})
	}
	s := New("ramp", "RAMP", pts)

	cs, err := Changes(s)
	require.NoError(t, err)

	assert.Equal(t, 124.0, cs.Latest)
	assert.Equal(t, day(2024, 1, 1), cs.AsOf)
	assert.Equal(t, 1.0, cs.Change1M)
	assert.Equal(t, 3.0, cs.Change3M)
	assert.Equal(t, 12.0, cs.Change12M)
}

func TestChanges_MonthEndClampsLookback(t *testing.T) {
	// Daily ramp 1..60 over Feb 1 - Mar 31 2024 (leap Feb, 29 days). The
	// one-month lookback from Mar 31 must anchor at Feb 29, not roll
	// forward into March the way bare AddDate would.
	pts := make([]Point, 0, 60)
	for i := 0; i < 60; i++ {
		pts = append(pts, Point{Date: day(2024, 2, 1).AddDate(0, 0, i), Value: float64(i + 1)})
	}
	s := New("ramp", "RAMP", pts)

	cs, err := Changes(s)
	require.NoError(t, err)

	assert.Equal(t, 60.0, cs.Latest)
	assert.Equal(t, 31.0, cs.Change1M, "anchored at Feb 29 (value 29)")
}

func TestMonthsBefore(t *testing.T) {
	assert.Equal(t, day(2024, 2, 29), monthsBefore(day(2024, 3, 31), 1))
	assert.Equal(t, day(2023, 2, 28), monthsBefore(day(2023, 3, 31), 1))
	assert.Equal(t, day(2024, 2, 15), monthsBefore(day(2024, 3, 15), 1))
	assert.Equal(t, day(2023, 12, 31), monthsBefore(day(2024, 3, 31), 3))
	assert.Equal(t, day(2023, 11, 30), monthsBefore(day(2024, 11, 30), 12))
}

func TestChanges_ShortHistoryYieldsMissingDeltas(t *testing.T) {
	s := New("short", "SHORT", []Point{
		{Date: day(2024, 5, 1), Value: 5},
		{Date: day(2024, 6, 1), Value: 7},
	})

	cs, err := Changes(s)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cs.Change1M)
	assert.True(t, IsMissing(cs.Change3M), "3m delta must be missing, not zero")
	assert.True(t, IsMissing(cs.Change12M))
}

func TestChanges_EmptySeries(t *testing.T) {
	_, err := Changes(New("empty", "EMPTY", nil))
	assert.Error(t, err)
}

func TestStore_SkipsEmptyAndLooksUpByName(t *testing.T) {
	st := NewStore([]*Series{
		New("a", "A", []Point{{Date: day(2024, 1, 1), Value: 1}}),
		New("empty", "E", nil),
	})

	_, ok := st.Get("a")
	assert.True(t, ok)
	_, ok = st.Get("empty")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, st.Names())
}

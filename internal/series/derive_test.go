package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtract_IntersectsOnSharedDates(t *testing.T) {
	a := New("ten_year", "DGS10", []Point{
		{Date: day(2024, 1, 1), Value: 4.0},
		{Date: day(2024, 1, 2), Value: 4.1},
		{Date: day(2024, 1, 4), Value: 4.3},
	})
	b := New("two_year", "DGS2", []Point{
		{Date: day(2024, 1, 2), Value: 4.5},
		{Date: day(2024, 1, 3), Value: 4.6},
		{Date: day(2024, 1, 4), Value: 4.6},
	})

	s := Subtract("spread_10y_2y", a, b)
	require.Len(t, s.Points, 2, "only dates present in both inputs survive")
	assert.Equal(t, day(2024, 1, 2), s.Points[0].Date)
	assert.InDelta(t, -0.4, s.Points[0].Value, 1e-12)
	assert.Equal(t, day(2024, 1, 4), s.Points[1].Date)
	assert.InDelta(t, -0.3, s.Points[1].Value, 1e-12)
}

func TestSubtract_EmptyInputYieldsEmptySeries(t *testing.T) {
	a := New("a", "A", []Point{{Date: day(2024, 1, 1), Value: 1}})
	assert.True(t, Subtract("x", a, New("b", "B", nil)).Empty())
	assert.True(t, Subtract("x", New("b", "B", nil), a).Empty())
}

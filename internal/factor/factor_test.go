package factor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/macrorun/internal/align"
	"github.com/sawpanic/macrorun/internal/series"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func miss() float64 { return series.Missing() }

func TestSpread_ElementwiseWithMissingPropagation(t *testing.T) {
	f := align.NewFrame(4, day(2024, 1, 4))
	require.NoError(t, f.Set("a", []float64{10, 10, miss(), 10}))
	require.NoError(t, f.Set("b", []float64{3, miss(), 4, 5}))

	got, err := Spread(f, "a", "b")
	require.NoError(t, err)

	assert.Equal(t, 7.0, got[0])
	assert.True(t, series.IsMissing(got[1]))
	assert.True(t, series.IsMissing(got[2]))
	assert.Equal(t, 5.0, got[3])
}

func TestSpread_AbsentColumn(t *testing.T) {
	f := align.NewFrame(2, day(2024, 1, 2))
	require.NoError(t, f.Set("a", []float64{1, 2}))

	_, err := Spread(f, "a", "nope")
	assert.Error(t, err)
}

func TestDiff_LeadingRowsUndefined(t *testing.T) {
	x := []float64{1, 2, 4, 8, 16}
	got := Diff(x, 2)

	assert.True(t, series.IsMissing(got[0]))
	assert.True(t, series.IsMissing(got[1]))
	assert.Equal(t, 3.0, got[2])
	assert.Equal(t, 6.0, got[3])
	assert.Equal(t, 12.0, got[4])
}

func TestDiff_SecondOrder(t *testing.T) {
	// Quadratic input: second difference at lag 1 is constant 2.
	x := []float64{0, 1, 4, 9, 16, 25}
	dd := Diff(Diff(x, 1), 1)

	assert.True(t, series.IsMissing(dd[0]))
	assert.True(t, series.IsMissing(dd[1]))
	for i := 2; i < len(dd); i++ {
		assert.Equal(t, 2.0, dd[i])
	}
}

func TestRollZScore_KnownWindow(t *testing.T) {
	cfg := ZScoreConfig{Window: 3, MinPeriods: 3}
	got := RollZScore([]float64{1, 2, 3, 4}, cfg)

	assert.True(t, series.IsMissing(got[0]))
	assert.True(t, series.IsMissing(got[1]))
	// Window {1,2,3}: mean 2, sample std 1.
	assert.InDelta(t, 1.0, got[2], 1e-12)
	assert.InDelta(t, 1.0, got[3], 1e-12)
}

func TestRollZScore_ConstantSeriesIsUndefined(t *testing.T) {
	x := make([]float64, 60)
	for i := range x {
		x[i] = 42.5
	}
	got := RollZScore(x, ZScoreConfig{Window: 30, MinPeriods: 12})

	for i, v := range got {
		assert.Truef(t, series.IsMissing(v), "row %d: flat window must yield missing, got %v", i, v)
	}
}

func TestRollZScore_MinPeriodsFloor(t *testing.T) {
	cfg := DefaultZScoreConfig() // window 90, floor max(12, 22) = 22
	x := make([]float64, 40)
	for i := range x {
		x[i] = float64(i)
	}
	got := RollZScore(x, cfg)

	assert.True(t, series.IsMissing(got[20]))
	assert.False(t, series.IsMissing(got[21]), "floor of 22 observations met at row 21")
}

func TestCombineZ_MissingInputExcludedFromMean(t *testing.T) {
	cfg := CompositeConfig{Name: "test", Weights: WeightTable{"a": 1.0, "b": 1.0}}
	got := CombineZ(map[string][]float64{
		"a": {2.0, 2.0},
		"b": {4.0, miss()},
	}, cfg)

	assert.Equal(t, 3.0, got[0], "both present: mean of weighted scores")
	assert.Equal(t, 2.0, got[1], "missing input drops from sum and count, never zeroed")
}

func TestCombineZ_OrderInvariant(t *testing.T) {
	cfg := CompositeConfig{Name: "test", Weights: WeightTable{"a": 1.2, "b": -1.0, "c": 0.8}}
	cols := map[string][]float64{
		"a": {1.0}, "b": {2.0}, "c": {-1.0},
	}
	first := CombineZ(cols, cfg)

	// Same inputs supplied under a different map; Go map iteration order is
	// random anyway, so repeated evaluation covers ordering.
	for i := 0; i < 10; i++ {
		again := CombineZ(map[string][]float64{"c": {-1.0}, "a": {1.0}, "b": {2.0}}, cfg)
		assert.Equal(t, first[0], again[0])
	}
}

func TestCombineZ_MinCoverageGate(t *testing.T) {
	cfg := CompositeConfig{Name: "test", Weights: WeightTable{"a": 1.0, "b": 1.0}, MinCoverage: 2}
	got := CombineZ(map[string][]float64{
		"a": {1.0, 1.0},
		"b": {1.0, miss()},
	}, cfg)

	assert.Equal(t, 1.0, got[0])
	assert.True(t, series.IsMissing(got[1]), "coverage floor withholds the partial row")
}

func TestCombineZ_RaggedColumnsTruncateToShortest(t *testing.T) {
	cfg := CompositeConfig{Name: "test", Weights: WeightTable{"a": 1.0, "b": 1.0}}
	got := CombineZ(map[string][]float64{
		"a": {2.0, 2.0, 2.0},
		"b": {4.0},
	}, cfg)

	require.Len(t, got, 1, "output bounded by the shortest weighted column")
	assert.Equal(t, 3.0, got[0])
}

func TestComposite_SkipsColumnsAbsentFromFrame(t *testing.T) {
	f := align.NewFrame(40, day(2024, 3, 1))
	x := make([]float64, 40)
	for i := range x {
		x[i] = float64(i * i)
	}
	require.NoError(t, f.Set("a", x))

	cfg := CompositeConfig{Name: "test", Weights: WeightTable{"a": 1.0, "ghost": 5.0}}
	got, err := Composite(f, cfg, ZScoreConfig{Window: 30, MinPeriods: 12})
	require.NoError(t, err)

	assert.False(t, series.IsMissing(got[39]), "present input still produces a value")
}

func TestCompositeConfig_Validate(t *testing.T) {
	assert.Error(t, CompositeConfig{Name: "x"}.Validate(), "empty weight table")
	assert.Error(t, CompositeConfig{Weights: WeightTable{"a": 1}}.Validate(), "missing name")
	assert.NoError(t, CompositeConfig{Name: "x", Weights: WeightTable{"a": 1}}.Validate())
}

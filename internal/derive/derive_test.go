package derive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelake/cinelake/pkg/types"
)

func TestProfit(t *testing.T) {
	assert.Equal(t, int64(150), Profit(100, 250))
	assert.Equal(t, int64(-40), Profit(100, 60))
	assert.Equal(t, int64(0), Profit(0, 0))
	// Unknown (0) budget still yields arithmetic profit; the interpretation
	// is the aggregator's concern.
	assert.Equal(t, int64(500), Profit(0, 500))
}

func TestROI_KnownBudget(t *testing.T) {
	roi, ok := ROI(100, 250)
	require.True(t, ok)
	assert.InDelta(t, 1.5, roi, 1e-9)

	roi, ok = ROI(200, 100)
	require.True(t, ok)
	assert.InDelta(t, -0.5, roi, 1e-9)
}

func TestROI_ZeroBudgetIsAbsent(t *testing.T) {
	roi, ok := ROI(0, 500)
	assert.False(t, ok)
	assert.Zero(t, roi)
	assert.False(t, math.IsInf(roi, 0))
	assert.False(t, math.IsNaN(roi))
}

func TestROI_NegativeBudgetIsAbsent(t *testing.T) {
	_, ok := ROI(-5, 500)
	assert.False(t, ok)
}

func TestReleaseYear(t *testing.T) {
	year, ok := ReleaseYear("1999-03-31")
	require.True(t, ok)
	assert.Equal(t, 1999, year)

	_, ok = ReleaseYear("")
	assert.False(t, ok)

	_, ok = ReleaseYear("not-a-date")
	assert.False(t, ok)

	_, ok = ReleaseYear("1999-13-01")
	assert.False(t, ok)
}

func TestNewCategorizer_RejectsBadTables(t *testing.T) {
	_, err := NewCategorizer(nil)
	assert.Error(t, err)

	_, err = NewCategorizer([]types.PopularityThreshold{{Bound: 10, Label: "Low"}})
	assert.Error(t, err, "first bound must be 0")

	_, err = NewCategorizer([]types.PopularityThreshold{{Bound: 0, Label: ""}})
	assert.Error(t, err, "labels are required")

	_, err = NewCategorizer([]types.PopularityThreshold{
		{Bound: 0, Label: "Low"},
		{Bound: 100, Label: "Medium"},
		{Bound: 100, Label: "High"},
	})
	assert.Error(t, err, "bounds must be strictly increasing")
}

func TestCategorize_DefaultTable(t *testing.T) {
	cat, err := NewCategorizer(types.DefaultPopularityThresholds())
	require.NoError(t, err)

	assert.Equal(t, "Low", cat.Categorize(0))
	assert.Equal(t, "Low", cat.Categorize(99.99))
	assert.Equal(t, "Medium", cat.Categorize(100))
	assert.Equal(t, "Medium", cat.Categorize(499.9))
	assert.Equal(t, "High", cat.Categorize(500))
	assert.Equal(t, "High", cat.Categorize(12345.6))
}

func TestCategorize_CustomTable(t *testing.T) {
	cat, err := NewCategorizer([]types.PopularityThreshold{
		{Bound: 0, Label: "Quiet"},
		{Bound: 50, Label: "Noticed"},
		{Bound: 250, Label: "Hot"},
		{Bound: 1000, Label: "Viral"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Quiet", cat.Categorize(49))
	assert.Equal(t, "Noticed", cat.Categorize(50))
	assert.Equal(t, "Hot", cat.Categorize(999))
	assert.Equal(t, "Viral", cat.Categorize(1000))
}

func TestApply_SetsAllDerivedFields(t *testing.T) {
	cat, err := NewCategorizer(types.DefaultPopularityThresholds())
	require.NoError(t, err)

	rec := types.MovieRecord{
		MovieID:     603,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-31",
		Budget:      63_000_000,
		Revenue:     463_517_383,
		Popularity:  120.5,
	}
	Apply(&rec, cat)

	assert.Equal(t, int64(400_517_383), rec.Profit)
	require.NotNil(t, rec.ROI)
	assert.InDelta(t, 6.357, *rec.ROI, 0.001)
	assert.Equal(t, "Medium", rec.PopularityCategory)
	require.NotNil(t, rec.ReleaseYear)
	assert.Equal(t, 1999, *rec.ReleaseYear)
}

func TestApply_AbsentMetricsStayAbsent(t *testing.T) {
	cat, err := NewCategorizer(types.DefaultPopularityThresholds())
	require.NoError(t, err)

	rec := types.MovieRecord{MovieID: 1, Title: "Obscure", Revenue: 1000}
	Apply(&rec, cat)

	assert.Equal(t, int64(1000), rec.Profit)
	assert.Nil(t, rec.ROI, "zero budget must leave ROI absent")
	assert.Nil(t, rec.ReleaseYear, "empty date must leave year absent")
	assert.Equal(t, "Low", rec.PopularityCategory)
}

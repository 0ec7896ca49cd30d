package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelake/cinelake/internal/derive"
	"github.com/cinelake/cinelake/internal/tmdb"
	"github.com/cinelake/cinelake/pkg/types"
)

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

func defaultCategorizer(t *testing.T) *derive.Categorizer {
	t.Helper()
	cat, err := derive.NewCategorizer(types.DefaultPopularityThresholds())
	require.NoError(t, err)
	return cat
}

// fullMovie is an enriched movie with every figure known.
func fullMovie() tmdb.Movie {
	return tmdb.Movie{
		Listing: tmdb.PopularMovie{
			ID: 603, Title: "The Matrix", OriginalLanguage: "en",
			Overview: "A hacker learns the truth.", ReleaseDate: "1999-03-31",
			PosterPath: "/matrix.jpg",
			Popularity: f64(120.5), VoteAverage: f64(8.0), VoteCount: i64(1000),
		},
		Detail: &tmdb.Detail{
			ID: 603, Tagline: "Free your mind.", Status: "Released",
			Homepage: "https://example.org", IMDBID: "tt0133093",
			Budget: i64(63_000_000), Revenue: i64(463_517_383), Runtime: i64(100),
			Genres:              []tmdb.Named{{ID: 28, Name: "Action"}},
			ProductionCompanies: []tmdb.Named{{ID: 79, Name: "Village Roadshow Pictures"}},
			SpokenLanguages:     []tmdb.Language{{ISO6391: "en", Name: "English"}},
			Keywords:            tmdb.KeywordsWrapper{Keywords: []tmdb.Named{{ID: 1, Name: "dystopia"}}},
		},
	}
}

// zeroMoneyMovie is enriched but reports the 0 unknown-money sentinel.
func zeroMoneyMovie() tmdb.Movie {
	return tmdb.Movie{
		Listing: tmdb.PopularMovie{
			ID: 604, Title: "Indie Gem", OriginalLanguage: "en",
			Overview: "Small film.", ReleaseDate: "2020-06-01",
			Popularity: f64(80.3), VoteAverage: f64(6.0), VoteCount: i64(500),
		},
		Detail: &tmdb.Detail{
			ID: 604, Status: "Released",
			Budget: i64(0), Revenue: i64(0), Runtime: i64(50),
		},
	}
}

// bareMovie never got a detail fetch.
func bareMovie() tmdb.Movie {
	return tmdb.Movie{
		Listing: tmdb.PopularMovie{ID: 605, Title: "Mystery Feature"},
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]tmdb.Movie{fullMovie(), zeroMoneyMovie(), bareMovie()})

	// Known zeros participate; the bare movie contributes nothing.
	assert.InDelta(t, 31_500_000, stats.BudgetMedian, 1e-6)
	assert.InDelta(t, 231_758_691.5, stats.RevenueMedian, 1e-6)
	assert.InDelta(t, 750, stats.VoteCountMedian, 1e-6)
	assert.InDelta(t, 75, stats.RuntimeMean, 1e-6)
	assert.InDelta(t, 100.4, stats.PopularityMean, 1e-6)
	assert.InDelta(t, 7.0, stats.VoteAverageMean, 1e-6)
}

func TestComputeStats_EmptyBatch(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.BudgetMedian)
	assert.Zero(t, stats.PopularityMean)
}

func TestClean_ImputesMissingNumerics(t *testing.T) {
	recs := Clean([]tmdb.Movie{fullMovie(), zeroMoneyMovie(), bareMovie()}, defaultCategorizer(t))
	require.Len(t, recs, 3)

	bare := recs[2]
	assert.Equal(t, int64(605), bare.MovieID)
	assert.Equal(t, int64(31_500_000), bare.Budget, "missing budget imputed with batch median")
	assert.Equal(t, int64(231_758_692), bare.Revenue, "missing revenue imputed with batch median")
	assert.Equal(t, int64(75), bare.Runtime, "missing runtime imputed with batch mean")
	assert.Equal(t, int64(750), bare.VoteCount)
	assert.InDelta(t, 100.4, bare.Popularity, 1e-6)
	assert.InDelta(t, 7.0, bare.VoteAverage, 1e-6)
}

func TestClean_KeepsKnownZeros(t *testing.T) {
	recs := Clean([]tmdb.Movie{fullMovie(), zeroMoneyMovie(), bareMovie()}, defaultCategorizer(t))
	require.Len(t, recs, 3)

	zero := recs[1]
	assert.Equal(t, int64(0), zero.Budget, "a known 0 is the unknown-money sentinel, never re-imputed")
	assert.Equal(t, int64(0), zero.Revenue)
	assert.Nil(t, zero.ROI, "zero budget leaves ROI absent")
}

func TestClean_TextDefaults(t *testing.T) {
	recs := Clean([]tmdb.Movie{bareMovie()}, defaultCategorizer(t))
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, types.UnknownText, rec.OriginalLanguage)
	assert.Equal(t, types.MissingOverview, rec.Overview)
	assert.Equal(t, types.UnknownText, rec.Status)
	assert.Equal(t, []string{types.UnknownText}, rec.Genres)
	assert.Equal(t, []string{types.UnknownText}, rec.ProductionCompanies)
	assert.Equal(t, []string{types.UnknownText}, rec.SpokenLanguages)
	assert.Empty(t, rec.Keywords, "keywords default to an empty set, not Unknown")
	assert.Empty(t, rec.Tagline)
	assert.Empty(t, rec.PosterURL)
	assert.Nil(t, rec.ReleaseYear)
}

func TestClean_EnrichedFields(t *testing.T) {
	recs := Clean([]tmdb.Movie{fullMovie()}, defaultCategorizer(t))
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, "The Matrix", rec.Title)
	assert.Equal(t, "Free your mind.", rec.Tagline)
	assert.Equal(t, "Released", rec.Status)
	assert.Equal(t, "tt0133093", rec.IMDBID)
	assert.Equal(t, []string{"Action"}, rec.Genres)
	assert.Equal(t, []string{"dystopia"}, rec.Keywords)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", rec.PosterURL)
}

func TestClean_AppliesDerivedMetrics(t *testing.T) {
	recs := Clean([]tmdb.Movie{fullMovie()}, defaultCategorizer(t))
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, int64(400_517_383), rec.Profit)
	require.NotNil(t, rec.ROI)
	assert.InDelta(t, 6.357, *rec.ROI, 0.001)
	assert.Equal(t, "Medium", rec.PopularityCategory)
	require.NotNil(t, rec.ReleaseYear)
	assert.Equal(t, 1999, *rec.ReleaseYear)
}

func TestClean_DedupesByMovieID(t *testing.T) {
	dup := fullMovie()
	dup.Listing.Title = "The Matrix (again)"

	recs := Clean([]tmdb.Movie{fullMovie(), dup, zeroMoneyMovie()}, defaultCategorizer(t))
	require.Len(t, recs, 2)
	assert.Equal(t, "The Matrix", recs[0].Title, "first occurrence wins")
	assert.Equal(t, int64(604), recs[1].MovieID)
}

func TestClean_EmptyBatch(t *testing.T) {
	assert.Nil(t, Clean(nil, defaultCategorizer(t)))
}

// Package transform lowers raw TMDB payloads into canonical movie records.
// The stage is pure: deduplication, batch statistics, imputation of missing
// numerics, text normalization, and derived-metric computation, with no I/O.
package transform

import (
	"math"

	"github.com/cinelake/cinelake/internal/derive"
	"github.com/cinelake/cinelake/internal/tmdb"
	"github.com/cinelake/cinelake/pkg/types"
)

// Clean turns a raw batch into canonical records: duplicates collapse to the
// first occurrence, missing numerics are imputed from batch statistics,
// missing text fields take their documented defaults, and the derived
// metrics are applied. Input order is preserved. The result still needs
// schema screening; lowering itself never fails.
func Clean(movies []tmdb.Movie, cat *derive.Categorizer) []types.MovieRecord {
	if len(movies) == 0 {
		return nil
	}

	movies = dedupe(movies)
	stats := ComputeStats(movies)

	out := make([]types.MovieRecord, 0, len(movies))
	for _, m := range movies {
		rec := lower(m, stats)
		derive.Apply(&rec, cat)
		out = append(out, rec)
	}
	return out
}

// dedupe collapses repeated movie IDs to their first occurrence. The popular
// listing can repeat titles across page boundaries between requests.
func dedupe(movies []tmdb.Movie) []tmdb.Movie {
	seen := make(map[int64]struct{}, len(movies))
	out := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if _, dup := seen[m.Listing.ID]; dup {
			continue
		}
		seen[m.Listing.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// lower maps one raw movie onto a MovieRecord, imputing missing numerics
// from the batch statistics. A known 0 is kept as the unknown-money sentinel
// and never re-imputed.
func lower(m tmdb.Movie, stats Stats) types.MovieRecord {
	rec := types.MovieRecord{
		MovieID:     m.Listing.ID,
		Title:       textOr(m.Listing.Title, types.UnknownText),
		Overview:    textOr(m.Listing.Overview, types.MissingOverview),
		ReleaseDate: m.Listing.ReleaseDate,
		PosterURL:   tmdb.PosterURL(m.Listing.PosterPath),
		Adult:       m.Listing.Adult,

		Budget:      imputeInt(effectiveBudget(m), stats.BudgetMedian),
		Revenue:     imputeInt(effectiveRevenue(m), stats.RevenueMedian),
		Runtime:     imputeInt(effectiveRuntime(m), stats.RuntimeMean),
		VoteCount:   imputeInt(effectiveVoteCount(m), stats.VoteCountMedian),
		Popularity:  imputeFloat(effectivePopularity(m), stats.PopularityMean),
		VoteAverage: imputeFloat(effectiveVoteAverage(m), stats.VoteAverageMean),
	}

	lang := m.Listing.OriginalLanguage
	if d := m.Detail; d != nil {
		rec.Tagline = d.Tagline
		rec.Status = d.Status
		rec.Homepage = d.Homepage
		rec.IMDBID = d.IMDBID
		rec.Adult = d.Adult
		rec.Genres = tmdb.Names(d.Genres)
		rec.Keywords = tmdb.Names(d.Keywords.Keywords)
		rec.ProductionCompanies = tmdb.Names(d.ProductionCompanies)
		rec.SpokenLanguages = tmdb.LanguageNames(d.SpokenLanguages)
		if lang == "" {
			lang = d.OriginalLanguage
		}
		if rec.ReleaseDate == "" {
			rec.ReleaseDate = d.ReleaseDate
		}
		if rec.PosterURL == "" {
			rec.PosterURL = tmdb.PosterURL(d.PosterPath)
		}
	}
	rec.OriginalLanguage = textOr(lang, types.UnknownText)
	rec.Status = textOr(rec.Status, types.UnknownText)

	// Genres, companies, and languages fall back to the Unknown placeholder;
	// keywords stay an empty set.
	if len(rec.Genres) == 0 {
		rec.Genres = []string{types.UnknownText}
	}
	if len(rec.ProductionCompanies) == 0 {
		rec.ProductionCompanies = []string{types.UnknownText}
	}
	if len(rec.SpokenLanguages) == 0 {
		rec.SpokenLanguages = []string{types.UnknownText}
	}
	return rec
}

func textOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func imputeInt(v *int64, stat float64) int64 {
	if v != nil {
		return *v
	}
	return int64(math.Round(stat))
}

func imputeFloat(v *float64, stat float64) float64 {
	if v != nil {
		return *v
	}
	return stat
}

// Budget, revenue, and runtime exist only on the detail payload; the vote
// and popularity figures ride the listing row, with the detail as fallback.

func effectiveBudget(m tmdb.Movie) *int64 {
	if m.Detail != nil {
		return m.Detail.Budget
	}
	return nil
}

func effectiveRevenue(m tmdb.Movie) *int64 {
	if m.Detail != nil {
		return m.Detail.Revenue
	}
	return nil
}

func effectiveRuntime(m tmdb.Movie) *int64 {
	if m.Detail != nil {
		return m.Detail.Runtime
	}
	return nil
}

func effectiveVoteCount(m tmdb.Movie) *int64 {
	if m.Listing.VoteCount != nil {
		return m.Listing.VoteCount
	}
	if m.Detail != nil {
		return m.Detail.VoteCount
	}
	return nil
}

func effectivePopularity(m tmdb.Movie) *float64 {
	if m.Listing.Popularity != nil {
		return m.Listing.Popularity
	}
	if m.Detail != nil {
		return m.Detail.Popularity
	}
	return nil
}

func effectiveVoteAverage(m tmdb.Movie) *float64 {
	if m.Listing.VoteAverage != nil {
		return m.Listing.VoteAverage
	}
	if m.Detail != nil {
		return m.Detail.VoteAverage
	}
	return nil
}

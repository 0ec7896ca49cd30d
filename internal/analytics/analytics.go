// Package analytics implements the canonical analytical queries over
// processed movie records. The query functions are pure; empty input or
// fully filtered input yields an empty result, never an error.
package analytics

import (
	"context"
	"slices"
	"strings"

	"github.com/cinelake/cinelake/pkg/types"
)

// DefaultTopN is the ranking depth used when a caller does not ask for one.
const DefaultTopN = 10

// Source serves the canonical queries. One implementation computes over an
// in-memory snapshot, another over the Postgres warehouse; both honor the
// same exclusion and ordering rules.
type Source interface {
	RevenueTrend(ctx context.Context) ([]types.YearRevenue, error)
	TopProfitable(ctx context.Context, n int) ([]types.RankedMovie, error)
	ROIByGenre(ctx context.Context) ([]types.GenreROI, error)
}

// RevenueTrend returns movie volume and mean revenue per release year,
// ascending by year. Records without a known year or with the 0 revenue
// sentinel are excluded before averaging.
func RevenueTrend(recs []types.MovieRecord) []types.YearRevenue {
	type bucket struct {
		count int
		sum   float64
	}
	byYear := make(map[int]*bucket)
	for _, r := range recs {
		if r.ReleaseYear == nil || !r.HasKnownRevenue() {
			continue
		}
		b := byYear[*r.ReleaseYear]
		if b == nil {
			b = &bucket{}
			byYear[*r.ReleaseYear] = b
		}
		b.count++
		b.sum += float64(r.Revenue)
	}

	out := make([]types.YearRevenue, 0, len(byYear))
	for year, b := range byYear {
		out = append(out, types.YearRevenue{
			Year:       year,
			MovieCount: b.count,
			AvgRevenue: b.sum / float64(b.count),
		})
	}
	slices.SortFunc(out, func(a, b types.YearRevenue) int { return a.Year - b.Year })
	return out
}

// TopProfitable ranks the n most profitable movies. Only records with a
// known positive budget and known revenue are eligible; repeated titles
// collapse to their first occurrence; the sort is stable and descending by
// profit, so equally profitable movies keep their input order.
func TopProfitable(recs []types.MovieRecord, n int) []types.RankedMovie {
	if n <= 0 {
		n = DefaultTopN
	}

	seen := make(map[string]struct{})
	eligible := make([]types.MovieRecord, 0, len(recs))
	for _, r := range recs {
		if !r.HasKnownBudget() || !r.HasKnownRevenue() {
			continue
		}
		if _, dup := seen[r.Title]; dup {
			continue
		}
		seen[r.Title] = struct{}{}
		eligible = append(eligible, r)
	}

	slices.SortStableFunc(eligible, func(a, b types.MovieRecord) int {
		switch {
		case a.Profit > b.Profit:
			return -1
		case a.Profit < b.Profit:
			return 1
		default:
			return 0
		}
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}

	out := make([]types.RankedMovie, 0, len(eligible))
	for i, r := range eligible {
		out = append(out, types.RankedMovie{
			Rank:        i + 1,
			Title:       r.Title,
			ReleaseYear: r.ReleaseYear,
			Budget:      r.Budget,
			Revenue:     r.Revenue,
			Profit:      r.Profit,
			ROI:         r.ROI,
		})
	}
	return out
}

// ROIByGenre returns mean ROI and mean profit per genre, descending by mean
// ROI with genre name as the tie-break. A record contributes to every genre
// it carries; the Unknown placeholder genre and records with absent ROI are
// excluded, so group means never divide by zero.
func ROIByGenre(recs []types.MovieRecord) []types.GenreROI {
	type bucket struct {
		count     int
		roiSum    float64
		profitSum float64
	}
	byGenre := make(map[string]*bucket)
	for _, r := range recs {
		if r.ROI == nil {
			continue
		}
		for _, g := range r.Genres {
			if g == "" || g == types.UnknownText {
				continue
			}
			b := byGenre[g]
			if b == nil {
				b = &bucket{}
				byGenre[g] = b
			}
			b.count++
			b.roiSum += *r.ROI
			b.profitSum += float64(r.Profit)
		}
	}

	out := make([]types.GenreROI, 0, len(byGenre))
	for genre, b := range byGenre {
		out = append(out, types.GenreROI{
			Genre:      genre,
			MovieCount: b.count,
			AvgROI:     b.roiSum / float64(b.count),
			AvgProfit:  b.profitSum / float64(b.count),
		})
	}
	slices.SortFunc(out, func(a, b types.GenreROI) int {
		switch {
		case a.AvgROI > b.AvgROI:
			return -1
		case a.AvgROI < b.AvgROI:
			return 1
		default:
			return strings.Compare(a.Genre, b.Genre)
		}
	})
	return out
}

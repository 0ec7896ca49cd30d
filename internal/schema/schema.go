// Package schema validates movie records at the ingestion boundary. An
// invalid record is excluded and reported; it never aborts the batch.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cinelake/cinelake/pkg/types"
)

// ValidationError identifies exactly one offending field of one record.
type ValidationError struct {
	MovieID int64
	Field   string
	Reason  string
	Value   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("movie %d: invalid %s: %s (value %s)", e.MovieID, e.Field, e.Reason, e.Value)
}

func invalid(id int64, field, reason, value string) *ValidationError {
	return &ValidationError{MovieID: id, Field: field, Reason: reason, Value: value}
}

// Validate checks one record against the schema invariants. It returns nil
// for a conforming record or the first violation found.
func Validate(rec types.MovieRecord) *ValidationError {
	if rec.MovieID <= 0 {
		return invalid(rec.MovieID, "movie_id", "must be positive", strconv.FormatInt(rec.MovieID, 10))
	}
	if rec.Budget < 0 {
		return invalid(rec.MovieID, "budget", "must be non-negative", strconv.FormatInt(rec.Budget, 10))
	}
	if rec.Revenue < 0 {
		return invalid(rec.MovieID, "revenue", "must be non-negative", strconv.FormatInt(rec.Revenue, 10))
	}
	if rec.Runtime < 0 {
		return invalid(rec.MovieID, "runtime", "must be non-negative", strconv.FormatInt(rec.Runtime, 10))
	}
	if rec.VoteCount < 0 {
		return invalid(rec.MovieID, "vote_count", "must be non-negative", strconv.FormatInt(rec.VoteCount, 10))
	}
	if badFloat(rec.Popularity) || rec.Popularity < 0 {
		return invalid(rec.MovieID, "popularity", "must be a non-negative finite number", formatFloat(rec.Popularity))
	}
	if badFloat(rec.VoteAverage) || rec.VoteAverage < 0 || rec.VoteAverage > 10 {
		return invalid(rec.MovieID, "vote_average", "must be within [0, 10]", formatFloat(rec.VoteAverage))
	}
	if rec.ReleaseDate != "" {
		if _, err := time.Parse(types.DateLayout, rec.ReleaseDate); err != nil {
			return invalid(rec.MovieID, "release_date", "must be a YYYY-MM-DD calendar date or empty", rec.ReleaseDate)
		}
	}
	return nil
}

// Screen partitions a batch into conforming records and per-record
// violations. Order is preserved; an empty batch yields empty results.
func Screen(recs []types.MovieRecord) ([]types.MovieRecord, []*ValidationError) {
	valid := make([]types.MovieRecord, 0, len(recs))
	var rejects []*ValidationError
	for _, rec := range recs {
		if verr := Validate(rec); verr != nil {
			rejects = append(rejects, verr)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rejects
}

func badFloat(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

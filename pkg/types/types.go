// Package types defines the public domain types for the cinelake movie ETL.
package types

import "time"

// MovieRecord is the canonical processed row for one movie in one daily
// snapshot. Raw fields mirror the TMDB payload after normalization and
// imputation; derived fields are computed once during the transform stage.
//
// Budget and Revenue use 0 as the "unknown" sentinel, so consumers must
// guard on > 0 before treating them as known figures. ROI and ReleaseYear
// are pointers because absence is meaningful: an absent ROI is never encoded
// as 0, NaN, or Inf.
type MovieRecord struct {
	MovieID             int64    `json:"movie_id"`
	Title               string   `json:"title"`
	OriginalLanguage    string   `json:"original_language"`
	Overview            string   `json:"overview"`
	Tagline             string   `json:"tagline"`
	Status              string   `json:"status"`
	Homepage            string   `json:"homepage"`
	PosterURL           string   `json:"poster_url"`
	IMDBID              string   `json:"imdb_id"`
	ReleaseDate         string   `json:"release_date"`
	Genres              []string `json:"genres"`
	Keywords            []string `json:"keywords"`
	ProductionCompanies []string `json:"production_companies"`
	SpokenLanguages     []string `json:"spoken_languages"`
	Budget              int64    `json:"budget"`
	Revenue             int64    `json:"revenue"`
	Runtime             int64    `json:"runtime"`
	Popularity          float64  `json:"popularity"`
	VoteAverage         float64  `json:"vote_average"`
	VoteCount           int64    `json:"vote_count"`
	Adult               bool     `json:"adult"`

	Profit             int64    `json:"profit"`
	ROI                *float64 `json:"roi,omitempty"`
	PopularityCategory string   `json:"popularity_category"`
	ReleaseYear        *int     `json:"release_year,omitempty"`
}

// HasKnownBudget reports whether the budget is a known positive figure
// rather than the 0 sentinel.
func (m MovieRecord) HasKnownBudget() bool { return m.Budget > 0 }

// HasKnownRevenue reports whether the revenue is a known positive figure
// rather than the 0 sentinel.
func (m MovieRecord) HasKnownRevenue() bool { return m.Revenue > 0 }

// UnknownText is the normalized placeholder for missing text fields such as
// title, original language, status, and genre names.
const UnknownText = "Unknown"

// MissingOverview is the normalized placeholder for an absent overview.
const MissingOverview = "No overview available"

// DateLayout is the calendar-date layout used by TMDB release dates and by
// the daily partition naming scheme.
const DateLayout = "2006-01-02"

// RunStatus represents the lifecycle state of a daily pipeline run.
type RunStatus string

// RunStatus values represent the lifecycle states of a daily pipeline run.
const (
	RunRunning              RunStatus = "RUNNING"
	RunCompleted            RunStatus = "COMPLETED"
	RunCompletedWithRejects RunStatus = "COMPLETED_WITH_REJECTS"
	RunFailed               RunStatus = "FAILED"
)

// FailureCategory classifies why an upstream API call failed.
type FailureCategory string

// FailureCategory values split failures into retryable and terminal classes.
const (
	FailureTransient FailureCategory = "TRANSIENT"
	FailurePermanent FailureCategory = "PERMANENT"
	FailureTimeout   FailureCategory = "TIMEOUT"
)

// PartitionRef identifies one daily partition in the object store.
type PartitionRef struct {
	Date      string    `json:"date"`
	Key       string    `json:"key"`
	Bytes     int64     `json:"bytes,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// YearRevenue is one row of the revenue-trend query: movie volume and mean
// revenue for a single release year. Only records with a known release year
// and known revenue contribute.
type YearRevenue struct {
	Year       int     `json:"year"`
	MovieCount int     `json:"movieCount"`
	AvgRevenue float64 `json:"avgRevenue"`
}

// RankedMovie is one row of the top-profitable query.
type RankedMovie struct {
	Rank        int      `json:"rank"`
	Title       string   `json:"title"`
	ReleaseYear *int     `json:"releaseYear,omitempty"`
	Budget      int64    `json:"budget"`
	Revenue     int64    `json:"revenue"`
	Profit      int64    `json:"profit"`
	ROI         *float64 `json:"roi,omitempty"`
}

// GenreROI is one row of the ROI-by-genre query. AvgROI and AvgProfit are
// means over the genre's contributing records; groups with no contributors
// are omitted rather than emitted with zeroed means.
type GenreROI struct {
	Genre      string  `json:"genre"`
	MovieCount int     `json:"movieCount"`
	AvgROI     float64 `json:"avgRoi"`
	AvgProfit  float64 `json:"avgProfit"`
}

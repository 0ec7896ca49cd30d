// Package tmdb is a client for The Movie Database HTTP API covering the two
// endpoints the pipeline extracts from: the popular listing and the per-movie
// detail lookup. Requests retry on transient failures with jittered
// exponential backoff, and the detail endpoint sits behind a circuit breaker
// so a flapping upstream degrades enrichment instead of stalling the run.
package tmdb

// DefaultBaseURL is the production TMDB API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// posterBaseURL prefixes poster paths to produce a browsable image URL.
const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// PopularPage is one page of the /movie/popular listing.
type PopularPage struct {
	Page         int            `json:"page"`
	Results      []PopularMovie `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// PopularMovie is one row of the popular listing. Numeric fields are
// pointers so a value missing from the payload stays distinguishable from a
// real 0 when batch statistics are imputed later.
type PopularMovie struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	OriginalLanguage string   `json:"original_language"`
	Overview         string   `json:"overview"`
	ReleaseDate      string   `json:"release_date"`
	PosterPath       string   `json:"poster_path"`
	Popularity       *float64 `json:"popularity"`
	VoteAverage      *float64 `json:"vote_average"`
	VoteCount        *int64   `json:"vote_count"`
	Adult            bool     `json:"adult"`
}

// Detail is the enriched per-movie payload fetched with
// append_to_response=keywords.
type Detail struct {
	ID                  int64           `json:"id"`
	Title               string          `json:"title"`
	OriginalLanguage    string          `json:"original_language"`
	Overview            string          `json:"overview"`
	Tagline             string          `json:"tagline"`
	Status              string          `json:"status"`
	Homepage            string          `json:"homepage"`
	IMDBID              string          `json:"imdb_id"`
	ReleaseDate         string          `json:"release_date"`
	PosterPath          string          `json:"poster_path"`
	Adult               bool            `json:"adult"`
	Budget              *int64          `json:"budget"`
	Revenue             *int64          `json:"revenue"`
	Runtime             *int64          `json:"runtime"`
	Popularity          *float64        `json:"popularity"`
	VoteAverage         *float64        `json:"vote_average"`
	VoteCount           *int64          `json:"vote_count"`
	Genres              []Named         `json:"genres"`
	ProductionCompanies []Named         `json:"production_companies"`
	SpokenLanguages     []Language      `json:"spoken_languages"`
	Keywords            KeywordsWrapper `json:"keywords"`
}

// Named is the {id, name} pair TMDB uses for genres, keywords, and
// production companies.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Language is one spoken-language entry.
type Language struct {
	ISO6391     string `json:"iso_639_1"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
}

// KeywordsWrapper unwraps the nested envelope append_to_response=keywords
// produces.
type KeywordsWrapper struct {
	Keywords []Named `json:"keywords"`
}

// Movie pairs a popular-listing row with its optional detail enrichment.
// Detail is nil when enrichment was skipped or failed; the transform stage
// then falls back to the listing fields alone.
type Movie struct {
	Listing PopularMovie
	Detail  *Detail
}

// Names projects the name field out of a Named slice.
func Names(items []Named) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

// LanguageNames projects the display names out of a Language slice.
func LanguageNames(items []Language) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

// PosterURL builds the browsable image URL for a poster path, or "" when the
// movie has no poster.
func PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return posterBaseURL + posterPath
}

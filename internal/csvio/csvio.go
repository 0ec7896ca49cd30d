// Package csvio encodes processed movie records to the partition CSV layout
// and back. The column set and order are fixed; a partition written today
// must decode byte-for-byte compatibly tomorrow, so Decode rejects any file
// whose header drifts from the canonical one.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/cinelake/cinelake/pkg/types"
)

// header lists the canonical columns, raw fields first and derived fields
// last. Absent ROI and release year serialize as empty cells.
var header = []string{
	"movie_id",
	"title",
	"original_language",
	"overview",
	"tagline",
	"status",
	"homepage",
	"poster_url",
	"imdb_id",
	"release_date",
	"genres",
	"keywords",
	"production_companies",
	"spoken_languages",
	"budget",
	"revenue",
	"runtime",
	"popularity",
	"vote_average",
	"vote_count",
	"adult",
	"profit",
	"roi",
	"popularity_category",
	"release_year",
}

// Header returns a copy of the canonical column list.
func Header() []string {
	return slices.Clone(header)
}

// Encode writes the header row followed by one row per record.
func Encode(w io.Writer, recs []types.MovieRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range recs {
		if err := cw.Write(encodeRow(rec)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Decode reads a partition CSV produced by Encode. The header must match the
// canonical column list exactly; row errors carry the 1-based line number.
func Decode(r io.Reader) ([]types.MovieRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(first, header) {
		return nil, fmt.Errorf("unexpected csv header %v", first)
	}

	var recs []types.MovieRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
}

func encodeRow(rec types.MovieRecord) []string {
	row := make([]string, 0, len(header))
	row = append(row,
		strconv.FormatInt(rec.MovieID, 10),
		rec.Title,
		rec.OriginalLanguage,
		rec.Overview,
		rec.Tagline,
		rec.Status,
		rec.Homepage,
		rec.PosterURL,
		rec.IMDBID,
		rec.ReleaseDate,
		types.JoinSet(rec.Genres),
		types.JoinSet(rec.Keywords),
		types.JoinSet(rec.ProductionCompanies),
		types.JoinSet(rec.SpokenLanguages),
		strconv.FormatInt(rec.Budget, 10),
		strconv.FormatInt(rec.Revenue, 10),
		strconv.FormatInt(rec.Runtime, 10),
		formatFloat(rec.Popularity),
		formatFloat(rec.VoteAverage),
		strconv.FormatInt(rec.VoteCount, 10),
		strconv.FormatBool(rec.Adult),
		strconv.FormatInt(rec.Profit, 10),
	)
	if rec.ROI != nil {
		row = append(row, formatFloat(*rec.ROI))
	} else {
		row = append(row, "")
	}
	row = append(row, rec.PopularityCategory)
	if rec.ReleaseYear != nil {
		row = append(row, strconv.Itoa(*rec.ReleaseYear))
	} else {
		row = append(row, "")
	}
	return row
}

func decodeRow(row []string) (types.MovieRecord, error) {
	var rec types.MovieRecord
	var err error

	if rec.MovieID, err = parseInt(row[0], "movie_id"); err != nil {
		return rec, err
	}
	rec.Title = row[1]
	rec.OriginalLanguage = row[2]
	rec.Overview = row[3]
	rec.Tagline = row[4]
	rec.Status = row[5]
	rec.Homepage = row[6]
	rec.PosterURL = row[7]
	rec.IMDBID = row[8]
	rec.ReleaseDate = row[9]
	rec.Genres = types.SplitSet(row[10])
	rec.Keywords = types.SplitSet(row[11])
	rec.ProductionCompanies = types.SplitSet(row[12])
	rec.SpokenLanguages = types.SplitSet(row[13])
	if rec.Budget, err = parseInt(row[14], "budget"); err != nil {
		return rec, err
	}
	if rec.Revenue, err = parseInt(row[15], "revenue"); err != nil {
		return rec, err
	}
	if rec.Runtime, err = parseInt(row[16], "runtime"); err != nil {
		return rec, err
	}
	if rec.Popularity, err = parseFloat(row[17], "popularity"); err != nil {
		return rec, err
	}
	if rec.VoteAverage, err = parseFloat(row[18], "vote_average"); err != nil {
		return rec, err
	}
	if rec.VoteCount, err = parseInt(row[19], "vote_count"); err != nil {
		return rec, err
	}
	if rec.Adult, err = strconv.ParseBool(row[20]); err != nil {
		return rec, fmt.Errorf("parse adult %q: %w", row[20], err)
	}
	if rec.Profit, err = parseInt(row[21], "profit"); err != nil {
		return rec, err
	}
	if row[22] != "" {
		roi, err := parseFloat(row[22], "roi")
		if err != nil {
			return rec, err
		}
		rec.ROI = &roi
	}
	rec.PopularityCategory = row[23]
	if row[24] != "" {
		year, err := strconv.Atoi(row[24])
		if err != nil {
			return rec, fmt.Errorf("parse release_year %q: %w", row[24], err)
		}
		rec.ReleaseYear = &year
	}
	return rec, nil
}

func parseInt(s, col string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", col, s, err)
	}
	return v, nil
}

func parseFloat(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", col, s, err)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

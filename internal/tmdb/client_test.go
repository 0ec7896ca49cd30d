package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelake/cinelake/pkg/types"
)

const popularBody = `{
	"page": 1,
	"results": [
		{"id": 603, "title": "The Matrix", "original_language": "en",
		 "overview": "A hacker learns the truth.", "release_date": "1999-03-31",
		 "poster_path": "/matrix.jpg", "popularity": 120.5,
		 "vote_average": 8.2, "vote_count": 24000, "adult": false},
		{"id": 604, "title": "The Matrix Reloaded", "original_language": "en",
		 "overview": "", "release_date": "2003-05-15",
		 "popularity": 85.1, "vote_average": 7.0, "vote_count": 11000}
	],
	"total_pages": 500,
	"total_results": 10000
}`

const detailBody = `{
	"id": 603, "title": "The Matrix", "original_language": "en",
	"overview": "A hacker learns the truth.", "tagline": "Free your mind.",
	"status": "Released", "homepage": "https://example.org/matrix",
	"imdb_id": "tt0133093", "release_date": "1999-03-31",
	"poster_path": "/matrix.jpg", "adult": false,
	"budget": 63000000, "revenue": 463517383, "runtime": 136,
	"popularity": 120.5, "vote_average": 8.2, "vote_count": 24000,
	"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}],
	"production_companies": [{"id": 79, "name": "Village Roadshow Pictures"}],
	"spoken_languages": [{"iso_639_1": "en", "name": "English", "english_name": "English"}],
	"keywords": {"keywords": [{"id": 310, "name": "artificial intelligence"}]}
}`

func fastRetry(attempts int) types.RetryPolicy {
	return types.RetryPolicy{MaxAttempts: attempts, BackoffSeconds: 0.001, BackoffMultiplier: 2, MaxBackoffSeconds: 0.01}
}

func TestPopular_DecodesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/popular", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(popularBody))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	page, err := c.Popular(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 500, page.TotalPages)
	require.Len(t, page.Results, 2)

	first := page.Results[0]
	assert.Equal(t, int64(603), first.ID)
	assert.Equal(t, "The Matrix", first.Title)
	require.NotNil(t, first.Popularity)
	assert.InDelta(t, 120.5, *first.Popularity, 1e-9)
	require.NotNil(t, first.VoteCount)
	assert.Equal(t, int64(24000), *first.VoteCount)
}

func TestDetail_DecodesKeywordsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "keywords", r.URL.Query().Get("append_to_response"))
		_, _ = w.Write([]byte(detailBody))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	d, err := c.Detail(context.Background(), 603)
	require.NoError(t, err)

	require.NotNil(t, d.Budget)
	assert.Equal(t, int64(63_000_000), *d.Budget)
	assert.Equal(t, []string{"Action", "Science Fiction"}, Names(d.Genres))
	assert.Equal(t, []string{"artificial intelligence"}, Names(d.Keywords.Keywords))
	assert.Equal(t, []string{"English"}, LanguageNames(d.SpokenLanguages))
	assert.Equal(t, "tt0133093", d.IMDBID)
}

func TestPopular_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(popularBody))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL), WithRetryPolicy(fastRetry(3)))
	_, err := c.Popular(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPopular_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL), WithRetryPolicy(fastRetry(3)))
	_, err := c.Popular(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestPopular_PermanentStatusDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad-key", WithBaseURL(srv.URL), WithRetryPolicy(fastRetry(3)))
	_, err := c.Popular(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "401 is permanent and must not be retried")
}

func TestDetail_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	})
	c := New("test-key", WithBaseURL(srv.URL), WithRetryPolicy(fastRetry(1)), WithBreaker(cb))

	_, err := c.Detail(context.Background(), 1)
	require.Error(t, err)
	_, err = c.Detail(context.Background(), 2)
	require.Error(t, err)

	_, err = c.Detail(context.Background(), 3)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestErrorsOmitAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("sekrit-key", WithBaseURL(srv.URL), WithRetryPolicy(fastRetry(1)))
	_, err := c.Detail(context.Background(), 42)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "sekrit-key")
}

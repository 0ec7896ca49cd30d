package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cinelake/cinelake/pkg/types"
)

// Client talks to the TMDB API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
	retry      types.RetryPolicy
	breaker    *gobreaker.CircuitBreaker
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithLogger sets the logger used for retry and breaker events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(policy types.RetryPolicy) Option {
	return func(c *Client) {
		if policy.MaxAttempts > 0 {
			c.retry = policy
		}
	}
}

// WithBreaker replaces the circuit breaker guarding the detail endpoint.
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// New creates a TMDB client authenticated with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		logger:     slog.Default(),
		retry:      DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(defaultBreakerSettings(c.logger))
	}
	return c
}

func defaultBreakerSettings(logger *slog.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "tmdb-detail",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Per-title misses (404 and friends) must not open the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(Classify(err))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

// Popular fetches one page of the popular-movie listing. Pages are 1-based.
func (c *Client) Popular(ctx context.Context, page int) (*PopularPage, error) {
	q := c.query()
	q.Set("page", strconv.Itoa(page))

	var out PopularPage
	if err := c.getJSON(ctx, "/movie/popular", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Detail fetches the enriched payload for one movie, keywords included. The
// call goes through the circuit breaker: once the upstream looks unhealthy,
// callers get gobreaker.ErrOpenState immediately instead of burning retries.
func (c *Client) Detail(ctx context.Context, movieID int64) (*Detail, error) {
	path := fmt.Sprintf("/movie/%d", movieID)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		q := c.query()
		q.Set("append_to_response", "keywords")

		var out Detail
		if err := c.getJSON(ctx, path, q, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Detail), nil
}

func (c *Client) query() url.Values {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", "en-US")
	return q
}

// getJSON performs a GET with bounded retry on transient failures.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	for attempt := 1; ; attempt++ {
		err := c.once(ctx, path, query, out)
		if err == nil {
			return nil
		}

		category := Classify(err)
		if attempt >= c.retry.MaxAttempts || !IsRetryable(category) {
			return err
		}

		delay := Backoff(c.retry, attempt)
		c.logger.Warn("tmdb request failed, retrying",
			"path", path, "category", string(category),
			"attempt", attempt, "delay", delay.String(), "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) once(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return redact(path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &APIError{Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// redact strips the request URL (which carries the api_key query parameter)
// out of transport errors before they reach logs.
func redact(path string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("GET %s: %w", path, uerr.Err)
	}
	return fmt.Errorf("GET %s: %w", path, err)
}

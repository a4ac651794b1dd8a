package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/mark-c-hall/movie-search/internal/config"
	"github.com/mark-c-hall/movie-search/internal/models"
)

const (
	DEFAULT_URL = "https://api.themoviedb.org"
	API_VERSION = "3"
)

// ErrRequestFailed wraps every transport or HTTP-level failure of a search.
var ErrRequestFailed = errors.New("tmdb request failed")

type Client struct {
	HTTPClient  http.Client
	APIURL      string
	APIToken    string
	Language    string
	Limiter     *rate.Limiter
	MaxRetries  int
	BaseBackoff time.Duration
}

type SearchResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []models.Movie `json:"results"`
}

func NewClient(cfg config.Config) *Client {
	apiURL := cfg.Client.APIURL
	if apiURL == "" {
		apiURL = DEFAULT_URL
	}

	client := Client{
		HTTPClient: http.Client{
			Timeout:   cfg.Client.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		APIURL:      apiURL,
		APIToken:    cfg.Client.APIToken,
		Language:    cfg.Client.Language,
		Limiter:     rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.Client.Limit)), cfg.Client.Burst),
		MaxRetries:  cfg.Client.MaxRetries,
		BaseBackoff: cfg.Client.BaseBackoff,
	}
	return &client
}

// SearchMovies returns the first page of TMDB matches for query. A search
// without matches yields an empty, non-nil slice.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")
	if c.Language != "" {
		params.Set("language", c.Language)
	}

	endpoint := fmt.Sprintf("%s/%s/search/movie?%s", c.APIURL, API_VERSION, params.Encode())
	resp, err := c.getHTTP(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error searching movies: %w", err)
	}
	defer resp.Body.Close()

	var APIResponse SearchResponse
	if err = json.NewDecoder(resp.Body).Decode(&APIResponse); err != nil {
		return nil, fmt.Errorf("%w: error decoding search response: %v", ErrRequestFailed, err)
	}

	if APIResponse.Results == nil {
		return []models.Movie{}, nil
	}
	return APIResponse.Results, nil
}

// getHTTP performs an authenticated GET. Only 2xx responses are returned;
// 429 is retried with exponential backoff while attempts remain.
func (c *Client) getHTTP(ctx context.Context, url string) (*http.Response, error) {
	attempts := max(c.MaxRetries, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter wait: %v", ErrRequestFailed, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: error creating http request: %v", ErrRequestFailed, err)
		}

		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.APIToken))
		req.Header.Add("Accept", "application/json")
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: error making http request: %v", ErrRequestFailed, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt == attempts-1 {
			return nil, statusError(resp)
		}
		resp.Body.Close()

		backoff := c.BaseBackoff << attempt
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w: exceeded %d attempts due to rate limiting", ErrRequestFailed, attempts)
}

// statusError consumes resp and describes its failure, using TMDB's
// status_message when the body carries one.
func statusError(resp *http.Response) error {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if msg := gjson.GetBytes(body, "status_message").String(); msg != "" {
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, msg)
	}
	return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
}

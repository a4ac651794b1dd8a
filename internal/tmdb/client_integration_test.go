//go:build integration

package tmdb

import (
	"context"
	"os"
	"testing"
	"time"

	"net/http"

	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("TMDB_API_TOKEN")
	if token == "" {
		t.Fatal("TMDB_API_TOKEN must be set for integration tests")
	}
	return &Client{
		HTTPClient:  http.Client{Timeout: 10 * time.Second},
		APIURL:      DEFAULT_URL,
		APIToken:    token,
		Language:    "en-US",
		Limiter:     rate.NewLimiter(rate.Every(time.Second/4), 5),
		MaxRetries:  3,
		BaseBackoff: 1 * time.Second,
	}
}

func TestSearchMovies(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	movies, err := client.SearchMovies(ctx, "Inception")
	if err != nil {
		t.Fatalf("SearchMovies returned error: %v", err)
	}

	if len(movies) == 0 {
		t.Fatal("expected at least one movie result, got none")
	}

	for _, movie := range movies {
		if movie.ID == 0 {
			t.Error("movie has zero ID")
		}
		if movie.Title == "" {
			t.Error("movie has empty title")
		}
	}
}

func TestSearchMovies_NoMatches(t *testing.T) {
	client := newTestClient(t)

	movies, err := client.SearchMovies(context.Background(), "zzzznomatchqqqxxy")
	if err != nil {
		t.Fatalf("SearchMovies returned error: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected no matches, got %d", len(movies))
	}
}

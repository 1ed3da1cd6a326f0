package newsapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return New(Config{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, logger)
}

const headlinesBody = `{
	"status": "ok",
	"totalResults": 3,
	"articles": [
		{
			"source": {"id": "bbc-news", "name": "BBC News"},
			"author": "A. Reporter",
			"title": "First headline",
			"description": "Something happened",
			"url": "https://example.com/1",
			"urlToImage": "https://example.com/1.jpg",
			"publishedAt": "2023-05-14T12:00:00Z"
		},
		{
			"source": {"id": null, "name": "Obscure Outlet"},
			"author": null,
			"title": "Second headline",
			"description": null,
			"url": "https://example.com/2",
			"urlToImage": null,
			"publishedAt": "2023-05-14T11:30:00Z"
		},
		{
			"source": {"id": "wired", "name": "Wired"},
			"title": "Bad timestamp",
			"url": "https://example.com/3",
			"publishedAt": "14/05/2023 11:00"
		}
	]
}`

func TestTopHeadlinesBySources(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/top-headlines", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Write([]byte(headlinesBody))
	}))

	articles, err := client.TopHeadlinesBySources(context.Background(), []string{"bbc-news", "wired"}, 40)
	require.NoError(t, err)

	assert.Equal(t, []string{"bbc-news,wired"}, gotQuery["sources"])
	assert.Equal(t, []string{"40"}, gotQuery["pageSize"])
	assert.Equal(t, []string{"test-key"}, gotQuery["apiKey"])

	// The third row has a malformed timestamp and must be dropped on its own.
	require.Len(t, articles, 2)

	assert.Equal(t, "First headline", articles[0].Title)
	assert.Equal(t, "Something happened", articles[0].Description)
	assert.Equal(t, "bbc-news", articles[0].Source.ID)
	assert.Equal(t, time.Date(2023, 5, 14, 12, 0, 0, 0, time.UTC), articles[0].PublishedAt)

	assert.Equal(t, "No description", articles[1].Description)
	assert.Equal(t, "", articles[1].ImageURL)
	assert.Equal(t, "unknown", articles[1].Source.ID)
}

func TestTopHeadlinesByCountry(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, []string{"gb"}, r.URL.Query()["country"])
		w.Write([]byte(`{"status": "ok", "totalResults": 0, "articles": []}`))
	}))

	articles, err := client.TopHeadlinesByCountry(context.Background(), "gb", 40)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestHeadlinesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "code": "apiKeyInvalid", "message": "bad key"}`))
	}))

	_, err := client.TopHeadlinesByCountry(context.Background(), "gb", 40)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestHeadlinesRetriesServerError(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status": "ok", "totalResults": 0, "articles": []}`))
	}))

	_, err := client.TopHeadlinesByCountry(context.Background(), "gb", 40)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestHeadlinesExhaustsRetries(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.TopHeadlinesByCountry(context.Background(), "gb", 40)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestSources(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sources", r.URL.Path)
		require.Equal(t, []string{"technology"}, r.URL.Query()["category"])
		require.Empty(t, r.URL.Query()["language"])
		w.Write([]byte(`{
			"status": "ok",
			"sources": [
				{"id": "ars-technica", "name": "Ars Technica"},
				{"id": null, "name": "Nameless Wire"}
			]
		}`))
	}))

	sources, err := client.Sources(context.Background(), "technology", "")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "ars-technica", sources[0].ID)
	assert.Equal(t, "unknown", sources[1].ID)
	assert.Equal(t, "Nameless Wire", sources[1].Name)
}

package provider

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

	"contentsearch/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(url string) Config {
	return Config{
		BaseURL:        url,
		Timeout:        2 * time.Second,
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
	}
}

const jsonPayload = `{
	"contents": [
		{
			"id": "vid-001",
			"title": "Go Concurrency Patterns",
			"type": "VIDEO",
			"metrics": {"views": 15000, "likes": 1200, "duration": "15:30"},
			"published_at": "2026-03-10T08:00:00Z",
			"tags": ["go", "concurrency"]
		},
		{
			"id": "art-001",
			"title": "Understanding Indexes",
			"type": "article",
			"metrics": {"reading_time": 8, "reactions": 450, "comments": 37},
			"published_at": "2026-03-09T10:30:00Z",
			"tags": ["databases"]
		}
	],
	"pagination": {"total": 2, "page": 1, "per_page": 20}
}`

func TestJSONProvider_FetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(jsonPayload))
	}))
	defer srv.Close()

	p := NewJSONProvider(testConfig(srv.URL), testLogger())
	contents, err := p.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contents, 2)

	video := contents[0]
	assert.Equal(t, domain.TypeVideo, video.ContentType)
	assert.Equal(t, "vid-001", video.ExternalID)
	assert.Equal(t, JSONProviderName, video.SourceProvider)
	assert.Equal(t, domain.ContentID(JSONProviderName, "vid-001"), video.ID)
	require.NotNil(t, video.Views)
	assert.Equal(t, 15000, *video.Views)
	require.NotNil(t, video.Duration)
	assert.Equal(t, "15:30", *video.Duration)
	// Article metrics must stay unset on a video.
	assert.Nil(t, video.ReadingTime)
	assert.Nil(t, video.Reactions)
	assert.Nil(t, video.Comments)

	article := contents[1]
	assert.Equal(t, domain.TypeArticle, article.ContentType)
	require.NotNil(t, article.ReadingTime)
	assert.Equal(t, 8, *article.ReadingTime)
	assert.Nil(t, article.Views)
	assert.Nil(t, article.Likes)
	assert.Equal(t, time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC), article.PublishedAt)
}

func TestJSONProvider_FetchAll_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewJSONProvider(testConfig(srv.URL), testLogger())
	_, err := p.FetchAll(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, JSONProviderName, fetchErr.Provider)
}

func TestJSONProvider_FetchAll_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"contents": [`))
	}))
	defer srv.Close()

	p := NewJSONProvider(testConfig(srv.URL), testLogger())
	_, err := p.FetchAll(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestJSONProvider_FetchAll_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(jsonPayload))
	}))
	defer srv.Close()

	p := NewJSONProvider(testConfig(srv.URL), testLogger())
	contents, err := p.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, contents, 2)
	assert.Equal(t, 2, calls)
}

package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentsearch/internal/domain"
)

func TestDocumentRoundTrip(t *testing.T) {
	views := 15000
	likes := 1200
	duration := "12:34"
	published := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

	content := domain.Content{
		ID:             domain.ContentID("provider1-json", "vid-1"),
		ExternalID:     "vid-1",
		SourceProvider: "provider1-json",
		ContentType:    domain.TypeVideo,
		Title:          "Go Concurrency Patterns",
		Views:          &views,
		Likes:          &likes,
		Duration:       &duration,
		Tags:           []string{"go", "concurrency"},
		PublishedAt:    published,
		FinalScore:     46.3,
		LastSyncedAt:   published.Add(time.Hour),
	}

	got, err := hitToContent(toDocument(content))
	require.NoError(t, err)

	assert.Equal(t, content.ID, got.ID)
	assert.Equal(t, content.ExternalID, got.ExternalID)
	assert.Equal(t, content.ContentType, got.ContentType)
	assert.Equal(t, content.Title, got.Title)
	require.NotNil(t, got.Views)
	assert.Equal(t, views, *got.Views)
	require.NotNil(t, got.Duration)
	assert.Equal(t, duration, *got.Duration)
	assert.Nil(t, got.ReadingTime)
	assert.Equal(t, content.Tags, got.Tags)
	assert.True(t, content.PublishedAt.Equal(got.PublishedAt))
	assert.Equal(t, content.FinalScore, got.FinalScore)
}

func TestToDocument_NilTagsBecomeEmptySlice(t *testing.T) {
	doc := toDocument(domain.Content{ID: domain.ContentID("p", "x")})
	assert.NotNil(t, doc.Tags)
	assert.Empty(t, doc.Tags)
}

func TestBuildSearchRequest(t *testing.T) {
	videoType := domain.TypeVideo

	tests := []struct {
		name       string
		filter     domain.SearchFilter
		wantSort   []string
		wantFilter any
		wantOffset int64
	}{
		{
			name:     "popularity sorts by score",
			filter:   domain.SearchFilter{SortBy: domain.SortByPopularity, Page: 1, PageSize: 10},
			wantSort: []string{"final_score:desc"},
		},
		{
			name:     "recency sorts by publish date",
			filter:   domain.SearchFilter{SortBy: domain.SortByRecency, Page: 1, PageSize: 10},
			wantSort: []string{"published_at:desc"},
		},
		{
			name:     "relevance breaks ties by score",
			filter:   domain.SearchFilter{Keyword: "go", SortBy: domain.SortByRelevance, Page: 1, PageSize: 10},
			wantSort: []string{"final_score:desc"},
		},
		{
			name:       "type filter and paging",
			filter:     domain.SearchFilter{Type: &videoType, SortBy: domain.SortByPopularity, Page: 3, PageSize: 20},
			wantSort:   []string{"final_score:desc"},
			wantFilter: "content_type = video",
			wantOffset: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := buildSearchRequest(tt.filter)

			assert.Equal(t, tt.wantSort, req.Sort)
			assert.Equal(t, tt.wantOffset, req.Offset)
			assert.Equal(t, int64(tt.filter.PageSize), req.Limit)
			if tt.wantFilter != nil {
				assert.Equal(t, tt.wantFilter, req.Filter)
			} else {
				assert.Nil(t, req.Filter)
			}
		})
	}
}

func TestHitToContent_RejectsBadID(t *testing.T) {
	doc := document{ID: "not-a-uuid"}
	_, err := hitToContent(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse hit id")
}

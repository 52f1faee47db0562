package domain

import "strings"

// SortBy selects the ordering of search results.
type SortBy string

const (
	// SortByPopularity orders by descending FinalScore.
	SortByPopularity SortBy = "popularity"
	// SortByRelevance orders by keyword match quality, FinalScore breaking ties.
	SortByRelevance SortBy = "relevance"
	// SortByRecency orders by descending PublishedAt.
	SortByRecency SortBy = "recency"
)

// ParseSortBy maps a user-supplied string to a SortBy, defaulting to
// popularity for anything unrecognized.
func ParseSortBy(s string) SortBy {
	switch strings.ToLower(s) {
	case string(SortByRelevance):
		return SortByRelevance
	case string(SortByRecency):
		return SortByRecency
	default:
		return SortByPopularity
	}
}

// ParseContentType maps a user-supplied type filter to a ContentType.
// "text" is accepted as an alias for article. Returns nil for no filter.
func ParseContentType(s string) *ContentType {
	switch strings.ToLower(s) {
	case "video":
		t := TypeVideo
		return &t
	case "article", "text":
		t := TypeArticle
		return &t
	default:
		return nil
	}
}

// SearchFilter carries every dimension of one search request.
type SearchFilter struct {
	Keyword  string
	Type     *ContentType
	SortBy   SortBy
	Page     int
	PageSize int
}

// SearchResult is a single page of matches plus pagination metadata.
type SearchResult struct {
	Items      []Content `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// TotalPages computes the page count for a result set.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

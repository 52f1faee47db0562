package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentID_Deterministic(t *testing.T) {
	a := ContentID("provider1-json", "vid-001")
	b := ContentID("provider1-json", "vid-001")
	assert.Equal(t, a, b)
}

func TestContentID_DistinguishesProviders(t *testing.T) {
	a := ContentID("provider1-json", "vid-001")
	b := ContentID("provider2-xml", "vid-001")
	assert.NotEqual(t, a, b)
}

func TestParseSortBy(t *testing.T) {
	assert.Equal(t, SortByPopularity, ParseSortBy(""))
	assert.Equal(t, SortByPopularity, ParseSortBy("bogus"))
	assert.Equal(t, SortByRelevance, ParseSortBy("Relevance"))
	assert.Equal(t, SortByRecency, ParseSortBy("recency"))
}

func TestParseContentType(t *testing.T) {
	assert.Nil(t, ParseContentType(""))
	assert.Nil(t, ParseContentType("podcast"))

	if v := ParseContentType("VIDEO"); assert.NotNil(t, v) {
		assert.Equal(t, TypeVideo, *v)
	}
	if a := ParseContentType("text"); assert.NotNil(t, a) {
		assert.Equal(t, TypeArticle, *a)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(5, 2))
	assert.Equal(t, 1, TotalPages(2, 2))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

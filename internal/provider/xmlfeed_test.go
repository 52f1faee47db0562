package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentsearch/internal/domain"
)

const xmlPayload = `<?xml version="1.0" encoding="UTF-8"?>
<feed>
	<items>
		<item>
			<id>x-100</id>
			<headline>Kubernetes Deep Dive</headline>
			<type>Video</type>
			<stats>
				<views>8200</views>
				<likes>640</likes>
				<duration>42:10</duration>
			</stats>
			<publication_date>2026-03-12</publication_date>
			<categories>
				<category>kubernetes</category>
				<category>devops</category>
			</categories>
		</item>
		<item>
			<id>x-200</id>
			<headline>Write Better SQL</headline>
			<type>text</type>
			<stats>
				<reading_time>12</reading_time>
				<reactions>300</reactions>
				<comments>not-a-number</comments>
			</stats>
			<publication_date>2026-03-01T09:15:00Z</publication_date>
			<categories>
				<category>sql</category>
			</categories>
		</item>
	</items>
	<meta>
		<total_count>2</total_count>
		<current_page>1</current_page>
		<items_per_page>20</items_per_page>
	</meta>
</feed>`

func TestXMLProvider_FetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(xmlPayload))
	}))
	defer srv.Close()

	p := NewXMLProvider(testConfig(srv.URL), testLogger())
	contents, err := p.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contents, 2)

	video := contents[0]
	assert.Equal(t, domain.TypeVideo, video.ContentType)
	assert.Equal(t, "Kubernetes Deep Dive", video.Title)
	assert.Equal(t, domain.ContentID(XMLProviderName, "x-100"), video.ID)
	require.NotNil(t, video.Views)
	assert.Equal(t, 8200, *video.Views)
	assert.Equal(t, []string{"kubernetes", "devops"}, video.Tags)
	// Date-only strings normalize to midnight UTC.
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), video.PublishedAt)

	article := contents[1]
	assert.Equal(t, domain.TypeArticle, article.ContentType)
	require.NotNil(t, article.ReadingTime)
	assert.Equal(t, 12, *article.ReadingTime)
	// Non-numeric stat strings map to unset, not zero.
	assert.Nil(t, article.Comments)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC), article.PublishedAt)
}

func TestXMLProvider_FetchAll_UnparsableDateKeepsItem(t *testing.T) {
	payload := `<feed><items><item>
		<id>x-300</id>
		<headline>No Date</headline>
		<type>article</type>
		<stats><reading_time>3</reading_time></stats>
		<publication_date>sometime last week</publication_date>
	</item></items></feed>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	p := NewXMLProvider(testConfig(srv.URL), testLogger())
	contents, err := p.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.True(t, contents[0].PublishedAt.IsZero())
}

func TestXMLProvider_FetchAll_MalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<feed><items>`))
	}))
	defer srv.Close()

	p := NewXMLProvider(testConfig(srv.URL), testLogger())
	_, err := p.FetchAll(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, XMLProviderName, fetchErr.Provider)
}

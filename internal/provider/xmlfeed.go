package provider

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"contentsearch/internal/domain"
)

// XMLProviderName identifies the tree-document provider.
const XMLProviderName = "provider2-xml"

// XMLProvider adapts the XML feed of provider 2. Every value in the feed
// is string-typed, so numbers and dates need parsing on our side.
type XMLProvider struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

func NewXMLProvider(cfg Config, logger *slog.Logger) *XMLProvider {
	return &XMLProvider{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.With("provider", XMLProviderName),
	}
}

func (p *XMLProvider) Name() string { return XMLProviderName }

type xmlFeed struct {
	XMLName xml.Name  `xml:"feed"`
	Items   []xmlItem `xml:"items>item"`
	Meta    xmlMeta   `xml:"meta"`
}

type xmlItem struct {
	ID              string   `xml:"id"`
	Headline        string   `xml:"headline"`
	Type            string   `xml:"type"`
	Stats           xmlStats `xml:"stats"`
	PublicationDate string   `xml:"publication_date"`
	Categories      []string `xml:"categories>category"`
}

type xmlStats struct {
	Views       string `xml:"views"`
	Likes       string `xml:"likes"`
	Duration    string `xml:"duration"`
	ReadingTime string `xml:"reading_time"`
	Reactions   string `xml:"reactions"`
	Comments    string `xml:"comments"`
}

type xmlMeta struct {
	TotalCount   int `xml:"total_count"`
	CurrentPage  int `xml:"current_page"`
	ItemsPerPage int `xml:"items_per_page"`
}

// FetchAll issues a single fetch and maps every item to canonical Content.
func (p *XMLProvider) FetchAll(ctx context.Context) ([]domain.Content, error) {
	body, err := fetchBody(ctx, p.httpClient, p.cfg)
	if err != nil {
		return nil, &FetchError{Provider: XMLProviderName, Err: err}
	}

	var feed xmlFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &FetchError{Provider: XMLProviderName, Err: err}
	}

	p.logger.Debug("fetched payload", "items", len(feed.Items))

	now := time.Now().UTC()
	contents := make([]domain.Content, 0, len(feed.Items))
	for _, item := range feed.Items {
		contents = append(contents, p.transform(item, now))
	}

	return contents, nil
}

func (p *XMLProvider) transform(item xmlItem, now time.Time) domain.Content {
	c := domain.Content{
		ID:             domain.ContentID(XMLProviderName, item.ID),
		ExternalID:     item.ID,
		SourceProvider: XMLProviderName,
		ContentType:    contentTypeFromTag(item.Type),
		Title:          item.Headline,
		Tags:           item.Categories,
		LastSyncedAt:   now,
	}

	// The feed delivers dates as plain strings, either date-only or full
	// ISO. An unparsable date keeps the item but leaves PublishedAt zero,
	// which the freshness tier treats as ancient.
	if ts, err := parseFeedDate(item.PublicationDate); err == nil {
		c.PublishedAt = ts
	} else {
		p.logger.Warn("unparsable publication date, leaving zero",
			"external_id", item.ID,
			"date", item.PublicationDate,
		)
	}

	if c.ContentType == domain.TypeVideo {
		c.Views = parseOptionalInt(item.Stats.Views)
		c.Likes = parseOptionalInt(item.Stats.Likes)
		if item.Stats.Duration != "" {
			c.Duration = &item.Stats.Duration
		}
	} else {
		c.ReadingTime = parseOptionalInt(item.Stats.ReadingTime)
		c.Reactions = parseOptionalInt(item.Stats.Reactions)
		c.Comments = parseOptionalInt(item.Stats.Comments)
	}

	return c
}

func parseFeedDate(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// parseOptionalInt maps non-numeric or empty stat strings to unset rather
// than a meaningful zero.
func parseOptionalInt(value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

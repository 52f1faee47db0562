package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"contentsearch/internal/domain"
)

// JSONProviderName identifies the structured-document provider.
const JSONProviderName = "provider1-json"

// JSONProvider adapts the JSON feed of provider 1. Its payload carries
// fully typed timestamps and numeric metrics.
type JSONProvider struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

func NewJSONProvider(cfg Config, logger *slog.Logger) *JSONProvider {
	return &JSONProvider{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.With("provider", JSONProviderName),
	}
}

func (p *JSONProvider) Name() string { return JSONProviderName }

type jsonResponse struct {
	Contents   []jsonContent  `json:"contents"`
	Pagination jsonPagination `json:"pagination"`
}

type jsonContent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	Metrics     jsonMetrics `json:"metrics"`
	PublishedAt time.Time   `json:"published_at"`
	Tags        []string    `json:"tags"`
}

type jsonMetrics struct {
	Views       *int    `json:"views"`
	Likes       *int    `json:"likes"`
	Duration    *string `json:"duration"`
	ReadingTime *int    `json:"reading_time"`
	Reactions   *int    `json:"reactions"`
	Comments    *int    `json:"comments"`
}

type jsonPagination struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// FetchAll issues a single fetch and maps every item to canonical Content.
func (p *JSONProvider) FetchAll(ctx context.Context) ([]domain.Content, error) {
	body, err := fetchBody(ctx, p.httpClient, p.cfg)
	if err != nil {
		return nil, &FetchError{Provider: JSONProviderName, Err: err}
	}

	var resp jsonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &FetchError{Provider: JSONProviderName, Err: err}
	}

	p.logger.Debug("fetched payload", "items", len(resp.Contents))

	now := time.Now().UTC()
	contents := make([]domain.Content, 0, len(resp.Contents))
	for _, item := range resp.Contents {
		contents = append(contents, p.transform(item, now))
	}

	return contents, nil
}

func (p *JSONProvider) transform(item jsonContent, now time.Time) domain.Content {
	c := domain.Content{
		ID:             domain.ContentID(JSONProviderName, item.ID),
		ExternalID:     item.ID,
		SourceProvider: JSONProviderName,
		ContentType:    contentTypeFromTag(item.Type),
		Title:          item.Title,
		PublishedAt:    item.PublishedAt.UTC(),
		Tags:           item.Tags,
		LastSyncedAt:   now,
	}

	if c.ContentType == domain.TypeVideo {
		c.Views = item.Metrics.Views
		c.Likes = item.Metrics.Likes
		c.Duration = item.Metrics.Duration
	} else {
		c.ReadingTime = item.Metrics.ReadingTime
		c.Reactions = item.Metrics.Reactions
		c.Comments = item.Metrics.Comments
	}

	return c
}

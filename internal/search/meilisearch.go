// Package search implements the full-text index on Meilisearch.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"

	"contentsearch/internal/domain"
)

const taskWaitTimeout = 15 * time.Second

// document is the indexed projection of a Content. Dates are indexed as
// unix seconds so the index can sort on them.
type document struct {
	ID             string   `json:"id"`
	ExternalID     string   `json:"external_id"`
	SourceProvider string   `json:"source_provider"`
	ContentType    string   `json:"content_type"`
	Title          string   `json:"title"`
	Views          *int     `json:"views,omitempty"`
	Likes          *int     `json:"likes,omitempty"`
	Duration       *string  `json:"duration,omitempty"`
	ReadingTime    *int     `json:"reading_time,omitempty"`
	Reactions      *int     `json:"reactions,omitempty"`
	Comments       *int     `json:"comments,omitempty"`
	Tags           []string `json:"tags"`
	PublishedAt    int64    `json:"published_at"`
	FinalScore     float64  `json:"final_score"`
	LastSyncedAt   int64    `json:"last_synced_at"`
}

// Index adapts a Meilisearch index to the search boundary used by the
// services. The index is a projection of the store and can be rebuilt
// from it at any time.
type Index struct {
	client meilisearch.ServiceManager
	index  meilisearch.IndexManager
	name   string
	logger *slog.Logger
}

func NewIndex(host, apiKey, indexName string, logger *slog.Logger) *Index {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return &Index{
		client: client,
		index:  client.Index(indexName),
		name:   indexName,
		logger: logger,
	}
}

// EnsureIndex creates the index if needed and registers the attributes
// the search path filters and sorts on. Called once at startup.
func (i *Index) EnsureIndex(ctx context.Context) error {
	if _, err := i.index.FetchInfoWithContext(ctx); err != nil {
		task, err := i.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
			Uid:        i.name,
			PrimaryKey: "id",
		})
		if err != nil {
			return fmt.Errorf("create index %q: %w", i.name, err)
		}
		if _, err := i.client.WaitForTaskWithContext(ctx, task.TaskUID, taskWaitTimeout); err != nil {
			return fmt.Errorf("wait for index %q creation: %w", i.name, err)
		}
	}

	task, err := i.index.UpdateFilterableAttributesWithContext(ctx, &[]interface{}{"content_type"})
	if err != nil {
		return fmt.Errorf("update filterable attributes: %w", err)
	}
	if _, err := i.index.WaitForTaskWithContext(ctx, task.TaskUID, taskWaitTimeout); err != nil {
		return fmt.Errorf("wait for filterable attributes: %w", err)
	}

	task, err = i.index.UpdateSortableAttributesWithContext(ctx, &[]string{"final_score", "published_at"})
	if err != nil {
		return fmt.Errorf("update sortable attributes: %w", err)
	}
	if _, err := i.index.WaitForTaskWithContext(ctx, task.TaskUID, taskWaitTimeout); err != nil {
		return fmt.Errorf("wait for sortable attributes: %w", err)
	}

	return nil
}

// IndexMany upserts the given contents into the index and waits for the
// indexing task so the next search sees them.
func (i *Index) IndexMany(ctx context.Context, contents []domain.Content) error {
	if len(contents) == 0 {
		return nil
	}

	docs := make([]document, 0, len(contents))
	for _, c := range contents {
		docs = append(docs, toDocument(c))
	}

	task, err := i.index.AddDocumentsWithContext(ctx, docs, nil)
	if err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	if _, err := i.index.WaitForTaskWithContext(ctx, task.TaskUID, taskWaitTimeout); err != nil {
		return fmt.Errorf("wait for indexing task: %w", err)
	}

	return nil
}

func (i *Index) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Content, int, error) {
	resp, err := i.index.SearchWithContext(ctx, filter.Keyword, buildSearchRequest(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("search index %q: %w", i.name, err)
	}

	items := make([]domain.Content, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		content, err := hitToContent(hit)
		if err != nil {
			i.logger.Warn("skipping malformed index hit", "index", i.name, "error", err)
			continue
		}
		items = append(items, content)
	}

	return items, int(resp.EstimatedTotalHits), nil
}

// IsAvailable reports whether the index can serve a search right now.
// Probed per request so an index that comes back mid-flight is picked
// up without a restart.
func (i *Index) IsAvailable(ctx context.Context) bool {
	if _, err := i.client.HealthWithContext(ctx); err != nil {
		return false
	}
	if _, err := i.index.FetchInfoWithContext(ctx); err != nil {
		return false
	}
	return true
}

func buildSearchRequest(filter domain.SearchFilter) *meilisearch.SearchRequest {
	req := &meilisearch.SearchRequest{
		Offset: int64((filter.Page - 1) * filter.PageSize),
		Limit:  int64(filter.PageSize),
	}

	if filter.Type != nil {
		req.Filter = fmt.Sprintf("content_type = %s", *filter.Type)
	}

	switch filter.SortBy {
	case domain.SortByRecency:
		req.Sort = []string{"published_at:desc"}
	case domain.SortByRelevance:
		// Match quality ranks first; the sort rule breaks ties by score.
		req.Sort = []string{"final_score:desc"}
	default:
		req.Sort = []string{"final_score:desc"}
	}

	return req
}

func toDocument(c domain.Content) document {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return document{
		ID:             c.ID.String(),
		ExternalID:     c.ExternalID,
		SourceProvider: c.SourceProvider,
		ContentType:    string(c.ContentType),
		Title:          c.Title,
		Views:          c.Views,
		Likes:          c.Likes,
		Duration:       c.Duration,
		ReadingTime:    c.ReadingTime,
		Reactions:      c.Reactions,
		Comments:       c.Comments,
		Tags:           tags,
		PublishedAt:    c.PublishedAt.Unix(),
		FinalScore:     c.FinalScore,
		LastSyncedAt:   c.LastSyncedAt.Unix(),
	}
}

func hitToContent(hit any) (domain.Content, error) {
	raw, err := json.Marshal(hit)
	if err != nil {
		return domain.Content{}, fmt.Errorf("marshal hit: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Content{}, fmt.Errorf("unmarshal hit: %w", err)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return domain.Content{}, fmt.Errorf("parse hit id %q: %w", doc.ID, err)
	}

	return domain.Content{
		ID:             id,
		ExternalID:     doc.ExternalID,
		SourceProvider: doc.SourceProvider,
		ContentType:    domain.ContentType(doc.ContentType),
		Title:          doc.Title,
		Views:          doc.Views,
		Likes:          doc.Likes,
		Duration:       doc.Duration,
		ReadingTime:    doc.ReadingTime,
		Reactions:      doc.Reactions,
		Comments:       doc.Comments,
		Tags:           doc.Tags,
		PublishedAt:    time.Unix(doc.PublishedAt, 0).UTC(),
		FinalScore:     doc.FinalScore,
		LastSyncedAt:   time.Unix(doc.LastSyncedAt, 0).UTC(),
	}, nil
}

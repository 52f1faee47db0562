// Package postgres implements the durable content store. The store is the
// single authoritative copy; the search index and cache are rebuildable
// projections of it.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"contentsearch/internal/domain"
)

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

type contentRow struct {
	ID             uuid.UUID      `db:"id"`
	ExternalID     string         `db:"external_id"`
	SourceProvider string         `db:"source_provider"`
	ContentType    string         `db:"content_type"`
	Title          string         `db:"title"`
	Views          *int           `db:"views"`
	Likes          *int           `db:"likes"`
	Duration       *string        `db:"duration"`
	ReadingTime    *int           `db:"reading_time"`
	Reactions      *int           `db:"reactions"`
	Comments       *int           `db:"comments"`
	PublishedAt    time.Time      `db:"published_at"`
	Tags           pq.StringArray `db:"tags"`
	FinalScore     float64        `db:"final_score"`
	LastSyncedAt   time.Time      `db:"last_synced_at"`
}

func (r contentRow) toDomain() domain.Content {
	return domain.Content{
		ID:             r.ID,
		ExternalID:     r.ExternalID,
		SourceProvider: r.SourceProvider,
		ContentType:    domain.ContentType(r.ContentType),
		Title:          r.Title,
		Views:          r.Views,
		Likes:          r.Likes,
		Duration:       r.Duration,
		ReadingTime:    r.ReadingTime,
		Reactions:      r.Reactions,
		Comments:       r.Comments,
		PublishedAt:    r.PublishedAt,
		Tags:           []string(r.Tags),
		FinalScore:     r.FinalScore,
		LastSyncedAt:   r.LastSyncedAt,
	}
}

const contentColumns = `id, external_id, source_provider, content_type, title,
	views, likes, duration, reading_time, reactions, comments,
	published_at, tags, final_score, last_synced_at`

// UpsertMany writes the whole batch in one transaction, keyed by
// (source_provider, external_id). Either every row lands or none does.
func (s *ContentStore) UpsertMany(ctx context.Context, contents []domain.Content) error {
	if len(contents) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO contents (` + contentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (source_provider, external_id) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			title = EXCLUDED.title,
			views = EXCLUDED.views,
			likes = EXCLUDED.likes,
			duration = EXCLUDED.duration,
			reading_time = EXCLUDED.reading_time,
			reactions = EXCLUDED.reactions,
			comments = EXCLUDED.comments,
			published_at = EXCLUDED.published_at,
			tags = EXCLUDED.tags,
			final_score = EXCLUDED.final_score,
			last_synced_at = EXCLUDED.last_synced_at`

	for i := range contents {
		c := &contents[i]
		_, err := tx.ExecContext(ctx, query,
			c.ID,
			c.ExternalID,
			c.SourceProvider,
			string(c.ContentType),
			c.Title,
			c.Views,
			c.Likes,
			c.Duration,
			c.ReadingTime,
			c.Reactions,
			c.Comments,
			c.PublishedAt,
			pq.StringArray(c.Tags),
			c.FinalScore,
			c.LastSyncedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert content %s/%s: %w", c.SourceProvider, c.ExternalID, err)
		}
	}

	return tx.Commit()
}

// Search filters on keyword (title and tags, case-insensitive) and type,
// applies the requested ordering and returns one page plus the total count.
func (s *ContentStore) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Content, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM contents" + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count contents: %w", err)
	}

	query := "SELECT " + contentColumns + " FROM contents" + where +
		orderBy(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select contents: %w", err)
	}

	items := make([]domain.Content, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}

	return items, total, nil
}

func buildWhere(filter domain.SearchFilter) (string, []any) {
	var clauses []string
	var args []any

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(title ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $%d))", n, n))
	}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		clauses = append(clauses, fmt.Sprintf("content_type = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderBy(filter domain.SearchFilter) string {
	switch filter.SortBy {
	case domain.SortByRecency:
		return " ORDER BY published_at DESC"
	case domain.SortByRelevance:
		if kw := strings.TrimSpace(filter.Keyword); kw != "" {
			// Prefix matches on the title rank first, score breaks ties.
			return fmt.Sprintf(" ORDER BY (title ILIKE %s) DESC, final_score DESC",
				pq.QuoteLiteral(kw+"%"))
		}
		return " ORDER BY final_score DESC"
	default:
		return " ORDER BY final_score DESC"
	}
}

// GetByID returns the row for id, or nil when it does not exist.
func (s *ContentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	var row contentRow
	query := "SELECT " + contentColumns + " FROM contents WHERE id = $1"

	err := s.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content by id: %w", err)
	}

	c := row.toDomain()
	return &c, nil
}

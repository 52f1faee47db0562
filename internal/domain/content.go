package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentType discriminates which metric fields of a Content are meaningful.
type ContentType string

const (
	TypeVideo   ContentType = "video"
	TypeArticle ContentType = "article"
)

// Content is the canonical, provider-agnostic representation of one item.
// Metric fields are pointers so that "unset" stays distinguishable from a
// genuine zero; only the set matching ContentType is populated.
type Content struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	ExternalID     string      `json:"external_id" db:"external_id"`
	SourceProvider string      `json:"source_provider" db:"source_provider"`
	ContentType    ContentType `json:"content_type" db:"content_type"`
	Title          string      `json:"title" db:"title"`

	// Video metrics
	Views    *int    `json:"views,omitempty" db:"views"`
	Likes    *int    `json:"likes,omitempty" db:"likes"`
	Duration *string `json:"duration,omitempty" db:"duration"`

	// Article metrics
	ReadingTime *int `json:"reading_time,omitempty" db:"reading_time"`
	Reactions   *int `json:"reactions,omitempty" db:"reactions"`
	Comments    *int `json:"comments,omitempty" db:"comments"`

	PublishedAt  time.Time `json:"published_at" db:"published_at"`
	Tags         []string  `json:"tags" db:"-"`
	FinalScore   float64   `json:"final_score" db:"final_score"`
	LastSyncedAt time.Time `json:"last_synced_at" db:"last_synced_at"`
}

// ContentID derives the internal surrogate id from the provider name and
// the provider-assigned external id. The same pair always maps to the same
// id, which keeps re-syncs idempotent and cache/index keys stable.
func ContentID(provider, externalID string) uuid.UUID {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%s", provider, externalID)))
}

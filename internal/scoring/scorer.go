// Package scoring implements the ranking formula applied to every item on
// each sync pass:
//
//	FinalScore = BaseScore*TypeCoefficient + FreshnessScore + EngagementScore
package scoring

import (
	"time"

	"contentsearch/internal/domain"
)

const (
	videoCoefficient   = 1.5
	articleCoefficient = 1.0
)

type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// ScoreNow evaluates the formula against the current time.
func (s *Scorer) ScoreNow(c *domain.Content) float64 {
	return s.Score(c, time.Now().UTC())
}

// Score is pure and deterministic for a given reference time. Unset metric
// fields count as zero.
func (s *Scorer) Score(c *domain.Content, reference time.Time) float64 {
	return baseScore(c)*typeCoefficient(c.ContentType) +
		freshnessScore(c.PublishedAt, reference) +
		engagementScore(c)
}

func baseScore(c *domain.Content) float64 {
	switch c.ContentType {
	case domain.TypeVideo:
		return float64(intOrZero(c.Views))/1000.0 + float64(intOrZero(c.Likes))/100.0
	case domain.TypeArticle:
		return float64(intOrZero(c.ReadingTime)) + float64(intOrZero(c.Reactions))/50.0
	default:
		return 0
	}
}

func typeCoefficient(t domain.ContentType) float64 {
	if t == domain.TypeVideo {
		return videoCoefficient
	}
	return articleCoefficient
}

// freshnessScore grants an age-based bonus. Thresholds are inclusive:
// exactly 7, 30 or 90 days still qualifies for the higher tier.
func freshnessScore(publishedAt, reference time.Time) float64 {
	ageDays := reference.Sub(publishedAt).Hours() / 24
	switch {
	case ageDays <= 7:
		return 5
	case ageDays <= 30:
		return 3
	case ageDays <= 90:
		return 1
	default:
		return 0
	}
}

func engagementScore(c *domain.Content) float64 {
	switch c.ContentType {
	case domain.TypeVideo:
		if views := intOrZero(c.Views); views > 0 {
			return float64(intOrZero(c.Likes)) / float64(views) * 10
		}
	case domain.TypeArticle:
		if rt := intOrZero(c.ReadingTime); rt > 0 {
			return float64(intOrZero(c.Reactions)) / float64(rt) * 5
		}
	}
	return 0
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

package models

import (
	"github.com/google/uuid"
)

// TagSource identifies which pipeline produced a tag link.
type TagSource string

const (
	TagSourceAI     TagSource = "ai"
	TagSourceManual TagSource = "manual"
)

// Sentiment is the per-link sentiment produced by the classification
// pipeline. The analytics engine consumes it read-only.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// TagLink connects a review to a tag label. AI-sourced links carry a tag id
// from the classifier's taxonomy; manual links may not.
type TagLink struct {
	ReviewID  uuid.UUID  `json:"review_id"`
	TagID     *uuid.UUID `json:"tag_id,omitempty"`
	Label     string     `json:"label"`
	Source    TagSource  `json:"source"`
	Sentiment Sentiment  `json:"sentiment"`
}

// TagStat accumulates per-tag counts during driver aggregation. Keyed by the
// normalized label; Label keeps the first-seen trimmed raw form for display.
type TagStat struct {
	Label    string              `json:"label"`
	Count    int                 `json:"count"`
	Positive int                 `json:"positive"`
	Negative int                 `json:"negative"`
	Neutral  int                 `json:"neutral"`
	TagIDs   map[uuid.UUID]bool  `json:"-"`
	Reviews  map[uuid.UUID]bool  `json:"-"`
}

// NetSentiment is positive minus negative mentions.
func (s *TagStat) NetSentiment() int {
	return s.Positive - s.Negative
}

// Irritant classifies a tag as a problem driver: at least two negative
// mentions and more negatives than positives.
func (s *TagStat) Irritant() bool {
	return s.Negative >= 2 && s.Negative > s.Positive
}

// Strength classifies a tag as a positive driver. A tag that is an irritant
// is never a strength; a tag with no positive or neutral mentions is neither.
func (s *TagStat) Strength() bool {
	return !s.Irritant() && s.Positive+s.Neutral > 0
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// tagLinkChunkSize bounds the id list passed to ANY() per query.
const tagLinkChunkSize = 1000

// TagLinkRepository reads review/tag links produced by the classification
// pipeline (ai source) or by operators (manual source).
type TagLinkRepository struct {
	db *DB
}

// NewTagLinkRepository creates a new tag link repository
func NewTagLinkRepository(db *DB) *TagLinkRepository {
	return &TagLinkRepository{db: db}
}

// ListForReviews returns all links of the given source attached to the given
// review ids. Large id sets are chunked to keep queries bounded.
func (r *TagLinkRepository) ListForReviews(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error) {
	if len(reviewIDs) == 0 {
		return nil, nil
	}

	var links []*models.TagLink
	for start := 0; start < len(reviewIDs); start += tagLinkChunkSize {
		end := start + tagLinkChunkSize
		if end > len(reviewIDs) {
			end = len(reviewIDs)
		}
		chunk, err := r.listChunk(ctx, reviewIDs[start:end], source)
		if err != nil {
			return nil, err
		}
		links = append(links, chunk...)
	}

	return links, nil
}

func (r *TagLinkRepository) listChunk(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error) {
	ids := make([]string, len(reviewIDs))
	for i, id := range reviewIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT review_id, tag_id, label, source, sentiment
		FROM review_tag_links
		WHERE review_id = ANY($1) AND source = $2
	`, pq.Array(ids), string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to list tag links: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var links []*models.TagLink
	for rows.Next() {
		link := &models.TagLink{}
		var (
			tagID     sql.NullString
			sentiment sql.NullString
		)
		if err := rows.Scan(&link.ReviewID, &tagID, &link.Label, &link.Source, &sentiment); err != nil {
			return nil, fmt.Errorf("failed to scan tag link: %w", err)
		}
		if tagID.Valid {
			parsed, err := uuid.Parse(tagID.String)
			if err == nil {
				link.TagID = &parsed
			}
		}
		// Links without a classified sentiment count as neutral.
		link.Sentiment = models.SentimentNeutral
		if sentiment.Valid {
			switch models.Sentiment(sentiment.String) {
			case models.SentimentPositive:
				link.Sentiment = models.SentimentPositive
			case models.SentimentNegative:
				link.Sentiment = models.SentimentNegative
			}
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag links: %w", err)
	}

	return links, nil
}

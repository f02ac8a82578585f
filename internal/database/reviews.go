package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// ReviewRepository reads review rows written by the ingest pipeline. The
// analytics engine never writes through it.
type ReviewRepository struct {
	db *DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `
	id, tenant_id, location_id, rating, comment,
	create_time, update_time, recorded_at,
	reply_text, reply_time, owner_reply, owner_reply_at, status
`

// ListByRange returns one page of reviews whose effective time falls inside
// [from, to]. The effective time mirrors models.Review.EffectiveTime: the
// first present of create_time, update_time, recorded_at. Rows are ordered by
// effective time then id so successive pages never overlap.
func (r *ReviewRepository) ListByRange(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE tenant_id = $1
		  AND COALESCE(create_time, update_time, recorded_at) BETWEEN $2 AND $3
	`
	args := []any{tenantID, from, to}
	argIndex := 4

	switch len(locationIDs) {
	case 0:
		// No location filter: the caller already decided the tenant-wide scope.
	case 1:
		query += fmt.Sprintf(" AND location_id = $%d", argIndex)
		args = append(args, locationIDs[0])
		argIndex++
	default:
		query += fmt.Sprintf(" AND location_id = ANY($%d)", argIndex)
		ids := make([]string, len(locationIDs))
		for i, id := range locationIDs {
			ids[i] = id.String()
		}
		args = append(args, pq.Array(ids))
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY COALESCE(create_time, update_time, recorded_at), id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var reviews []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// DistinctLocationIDs returns the distinct location ids present in the
// tenant's review rows. Used as the scope fallback for tenants that have
// reviews but no registered location metadata.
func (r *ReviewRepository) DistinctLocationIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT location_id FROM reviews WHERE tenant_id = $1
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct review locations: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan location id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate location ids: %w", err)
	}

	return ids, nil
}

func scanReview(rows *sql.Rows) (*models.Review, error) {
	review := &models.Review{}
	var (
		rating       sql.NullInt64
		comment      sql.NullString
		createTime   sql.NullTime
		updateTime   sql.NullTime
		recordedAt   sql.NullTime
		replyText    sql.NullString
		replyTime    sql.NullTime
		ownerReply   sql.NullString
		ownerReplyAt sql.NullTime
		status       sql.NullString
	)

	err := rows.Scan(
		&review.ID,
		&review.TenantID,
		&review.LocationID,
		&rating,
		&comment,
		&createTime,
		&updateTime,
		&recordedAt,
		&replyText,
		&replyTime,
		&ownerReply,
		&ownerReplyAt,
		&status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}

	if rating.Valid {
		v := int(rating.Int64)
		review.Rating = &v
	}
	if comment.Valid {
		review.Comment = &comment.String
	}
	if createTime.Valid {
		review.CreateTime = &createTime.Time
	}
	if updateTime.Valid {
		review.UpdateTime = &updateTime.Time
	}
	if recordedAt.Valid {
		review.RecordedAt = &recordedAt.Time
	}
	if replyText.Valid {
		review.ReplyText = &replyText.String
	}
	if replyTime.Valid {
		review.ReplyTime = &replyTime.Time
	}
	if ownerReply.Valid {
		review.OwnerReply = &ownerReply.String
	}
	if ownerReplyAt.Valid {
		review.OwnerReplyAt = &ownerReplyAt.Time
	}
	if status.Valid {
		review.Status = models.ReviewStatus(status.String)
	}

	return review, nil
}

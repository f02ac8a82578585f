package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/database"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"go.uber.org/zap"
)

const (
	// fetchPageSize is the fixed page size for range fetches.
	fetchPageSize = 1000
	// fetchHardCap bounds the total rows loaded per call. Hitting it marks
	// the result truncated; callers must not treat totals as exhaustive.
	fetchHardCap = 20000
)

// Fetcher loads all reviews for a tenant/location-set whose effective time
// falls in a range, through bounded pagination. Each call paginates
// independently; pages are strictly sequential because every offset depends
// on the prior page's size.
type Fetcher struct {
	reviews database.ReviewRepositoryInterface
	logger  *zap.Logger
}

// NewFetcher creates a new review fetcher.
func NewFetcher(reviews database.ReviewRepositoryInterface, logger *zap.Logger) *Fetcher {
	return &Fetcher{reviews: reviews, logger: logger}
}

// FetchRange returns the reviews in range and whether the hard cap truncated
// the result. A query failure is not retried; it surfaces as a FetchError.
func (f *Fetcher) FetchRange(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, rng models.DateRange) ([]*models.Review, bool, error) {
	var all []*models.Review
	offset := 0
	truncated := false

	for {
		page, err := f.reviews.ListByRange(ctx, tenantID, locationIDs, rng.From, rng.To, fetchPageSize, offset)
		if err != nil {
			return nil, false, &FetchError{Op: "list_reviews", Err: err}
		}
		all = append(all, page...)
		if len(page) < fetchPageSize {
			break
		}
		offset += len(page)
		if offset >= fetchHardCap {
			truncated = true
			f.logger.Warn("review_fetch_truncated",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("row_cap", fetchHardCap),
				zap.String("preset", rng.Preset),
			)
			break
		}
	}

	f.logger.Debug("fetched_reviews",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("rows", len(all)),
		zap.Bool("truncated", truncated),
	)

	return all, truncated, nil
}

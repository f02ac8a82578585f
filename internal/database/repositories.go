package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// ReviewRepositoryInterface defines the read-only review store surface the
// analytics engine depends on. Enables mock implementations in tests.
type ReviewRepositoryInterface interface {
	ListByRange(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error)
	DistinctLocationIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// TagLinkRepositoryInterface defines the tag link read surface.
type TagLinkRepositoryInterface interface {
	ListForReviews(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error)
}

// LocationRepositoryInterface defines the location read surface.
type LocationRepositoryInterface interface {
	GetByTenantAndID(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error)
	ListIDsByTenant(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ReviewRepositoryInterface   = (*ReviewRepository)(nil)
	_ TagLinkRepositoryInterface  = (*TagLinkRepository)(nil)
	_ LocationRepositoryInterface = (*LocationRepository)(nil)
)

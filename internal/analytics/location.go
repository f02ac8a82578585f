package analytics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/database"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// LocationResolver turns an optional explicit location id into the effective
// scope of location ids an analytics call aggregates over.
type LocationResolver struct {
	locations database.LocationRepositoryInterface
	reviews   database.ReviewRepositoryInterface
}

// NewLocationResolver creates a new location resolver.
func NewLocationResolver(locations database.LocationRepositoryInterface, reviews database.ReviewRepositoryInterface) *LocationResolver {
	return &LocationResolver{locations: locations, reviews: reviews}
}

// Resolve returns the effective scope. Missing is set only when an explicit
// id does not belong to the tenant; a tenant with no registered locations
// falls back to the distinct location ids seen in its reviews, and an empty
// scope after that fallback is a valid, non-missing result.
func (r *LocationResolver) Resolve(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) (models.LocationScope, error) {
	if locationID != nil {
		location, err := r.locations.GetByTenantAndID(ctx, tenantID, *locationID)
		if errors.Is(err, database.ErrLocationNotFound) {
			return models.LocationScope{Missing: true}, nil
		}
		if err != nil {
			return models.LocationScope{}, &FetchError{Op: "resolve_location", Err: err}
		}
		return models.LocationScope{LocationIDs: []uuid.UUID{location.ID}}, nil
	}

	ids, err := r.locations.ListIDsByTenant(ctx, tenantID)
	if err != nil {
		return models.LocationScope{}, &FetchError{Op: "list_locations", Err: err}
	}
	if len(ids) == 0 {
		// Tenants with reviews but no registered location metadata still get
		// analytics over whatever locations their reviews mention.
		ids, err = r.reviews.DistinctLocationIDs(ctx, tenantID)
		if err != nil {
			return models.LocationScope{}, &FetchError{Op: "list_review_locations", Err: err}
		}
	}

	return models.LocationScope{LocationIDs: ids}, nil
}

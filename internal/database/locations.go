package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// ErrLocationNotFound is returned when a location id does not exist for the
// tenant. The boundary maps it to 404.
var ErrLocationNotFound = errors.New("location not found")

// LocationRepository handles location database operations
type LocationRepository struct {
	db *DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// GetByTenantAndID retrieves a location, scoped to the owning tenant.
func (r *LocationRepository) GetByTenantAndID(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error) {
	location := &models.Location{}
	var (
		address sql.NullString
		placeID sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, address, place_id, created_at, updated_at
		FROM locations
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(
		&location.ID,
		&location.TenantID,
		&location.Name,
		&address,
		&placeID,
		&location.CreatedAt,
		&location.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	if address.Valid {
		location.Address = &address.String
	}
	if placeID.Valid {
		location.PlaceID = &placeID.String
	}

	return location, nil
}

// ListIDsByTenant returns all location ids registered to a tenant.
func (r *LocationRepository) ListIDsByTenant(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM locations WHERE tenant_id = $1 ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
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
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}

	return ids, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a Google Business Profile location registered to a tenant.
// The analytics engine only reads ids for scoping; the rest is display
// metadata owned by the profile sync.
type Location struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	PlaceID   *string   `json:"place_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationScope is the resolved set of location ids an analytics call
// aggregates over. Missing is true only when an explicitly requested id was
// not found for the tenant; a tenant with zero locations yields an empty,
// non-missing scope.
type LocationScope struct {
	LocationIDs []uuid.UUID
	Missing     bool
}

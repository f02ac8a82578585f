package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is one customer account. Bearer tokens resolve to a tenant before
// any analytics computation runs.
type Tenant struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	ProviderID    *string   `json:"provider_id,omitempty"`
	Name          *string   `json:"name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

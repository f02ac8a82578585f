package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// TenantRepository handles tenant database operations
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, email, provider_id, name, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		tenant.ID,
		tenant.Email,
		tenant.ProviderID,
		tenant.Name,
		tenant.EmailVerified,
		now,
		now,
	).Scan(&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, email, provider_id, name, email_verified, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tenant.ID,
		&tenant.Email,
		&tenant.ProviderID,
		&tenant.Name,
		&tenant.EmailVerified,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

// GetByProviderID retrieves a tenant by identity-provider subject id
func (r *TenantRepository) GetByProviderID(ctx context.Context, providerID string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, email, provider_id, name, email_verified, created_at, updated_at
		FROM tenants
		WHERE provider_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, providerID).Scan(
		&tenant.ID,
		&tenant.Email,
		&tenant.ProviderID,
		&tenant.Name,
		&tenant.EmailVerified,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant by provider ID: %w", err)
	}

	return tenant, nil
}

// Update updates an existing tenant
func (r *TenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET email = $2, provider_id = $3, name = $4, email_verified = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		tenant.ID,
		tenant.Email,
		tenant.ProviderID,
		tenant.Name,
		tenant.EmailVerified,
		now,
	).Scan(&tenant.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("tenant not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	return nil
}

package middleware

import (
	"context"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"github.com/reviewpulse/reviewpulse-api/internal/request"
)

// SetTenantInContext is a helper function for testing - sets tenant in context
// This is exported so other test packages can use it
func SetTenantInContext(ctx context.Context, tenant *models.Tenant) context.Context {
	return request.WithTenant(ctx, tenant)
}

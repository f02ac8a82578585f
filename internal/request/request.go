package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

type contextKey string

const tenantContextKey contextKey = "tenant"

// TenantContextKey returns the context key used for the tenant. Exposed for tests that inject non-tenant values.
func TenantContextKey() contextKey { return tenantContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithTenant returns a context with the tenant attached.
func WithTenant(ctx context.Context, tenant *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// TenantFromContext returns the tenant from the request context, or nil if missing or wrong type.
func TenantFromContext(r *http.Request) *models.Tenant {
	t, _ := r.Context().Value(tenantContextKey).(*models.Tenant)
	return t
}

// paramAliases maps accepted aliases to their canonical query parameter.
// The canonical name wins when both are present.
var paramAliases = map[string]string{
	"period":   "preset",
	"location": "location_id",
	"op":       "view",
}

// Param reads a query parameter honoring its aliases.
func Param(r *http.Request, name string) string {
	q := r.URL.Query()
	if v := q.Get(name); v != "" {
		return v
	}
	for alias, canonical := range paramAliases {
		if canonical == name {
			if v := q.Get(alias); v != "" {
				return v
			}
		}
	}
	return ""
}

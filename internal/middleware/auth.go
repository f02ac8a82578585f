package middleware

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/database"
	logpkg "github.com/reviewpulse/reviewpulse-api/internal/logger"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"github.com/reviewpulse/reviewpulse-api/internal/request"
	"github.com/reviewpulse/reviewpulse-api/internal/services/oidc"
	"go.uber.org/zap"
)

// Auth creates authentication middleware that validates JWT tokens and
// resolves the bearer to a tenant before any analytics work runs.
func Auth(db *database.DB, oidcProvider *oidc.Provider, jwksManager *oidc.JWKSManager, providerName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			tokenString := parts[1]

			ctx := r.Context()
			oidcConfig, err := oidcProvider.GetConfig(ctx, providerName)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Failed to get OIDC configuration")
				return
			}

			if oidcConfig.JWKSUrl == nil {
				respondError(w, http.StatusInternalServerError, "JWKS URL not configured")
				return
			}

			// Verify token
			verifier := oidc.NewVerifier(jwksManager, oidcConfig.Issuer)
			claims, err := verifier.Verify(ctx, tokenString, *oidcConfig.JWKSUrl)
			if err != nil {
				logger.Warn("token_verification_failed",
					zap.String("issuer", oidcConfig.Issuer),
					zap.Error(err),
				)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			// Get or create tenant
			tenantRepo := database.NewTenantRepository(db)
			tenant, err := tenantRepo.GetByProviderID(ctx, claims.Sub)
			if err != nil {
				// The repository wraps sql.ErrNoRows, so errors.Is will unwrap and check
				if errors.Is(err, sql.ErrNoRows) {
					tenant = &models.Tenant{
						ID:            uuid.New(),
						Email:         claims.Email,
						ProviderID:    &claims.Sub,
						Name:          &claims.Name,
						EmailVerified: true,
					}
					if err := tenantRepo.Create(ctx, tenant); err != nil {
						respondError(w, http.StatusInternalServerError, "Failed to create tenant")
						return
					}
				} else {
					// Actual database error (connection failure, timeout, etc.)
					logger.Error("tenant_lookup_failed",
						zap.String("provider_id", logpkg.SanitizeUserID(claims.Sub)),
						zap.Error(err),
					)
					respondError(w, http.StatusInternalServerError, "Database error")
					return
				}
			} else {
				// Refresh tenant info when the token carries newer values
				updateNeeded := false
				if tenant.Email != claims.Email {
					tenant.Email = claims.Email
					updateNeeded = true
				}
				if (tenant.Name == nil && claims.Name != "") || (tenant.Name != nil && *tenant.Name != claims.Name) {
					name := claims.Name
					tenant.Name = &name
					updateNeeded = true
				}
				if updateNeeded {
					if err := tenantRepo.Update(ctx, tenant); err != nil {
						logger.Warn("tenant_refresh_failed",
							zap.String("provider_id", logpkg.SanitizeUserID(claims.Sub)),
							zap.Error(err),
						)
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(request.WithTenant(ctx, tenant)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

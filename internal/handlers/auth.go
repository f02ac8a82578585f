package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/reviewpulse/reviewpulse-api/internal/request"
	"github.com/reviewpulse/reviewpulse-api/internal/services/oidc"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	oidcProvider *oidc.Provider
	providerName string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(oidcProvider *oidc.Provider, providerName string) *AuthHandler {
	return &AuthHandler{oidcProvider: oidcProvider, providerName: providerName}
}

// RegisterRoutes registers auth routes on the given router
// The router should already have the /api/v1/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/oidc/login", h.GetOIDCLogin).Methods("GET")
	r.HandleFunc("/oidc/callback", h.GetOIDCCallback).Methods("GET")
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// GetOIDCLogin returns OIDC configuration for frontend
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loginConfig, err := h.oidcProvider.GetLoginConfig(ctx, h.providerName)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to get OIDC configuration", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, loginConfig)
}

// GetOIDCCallback exchanges an authorization code for tokens server-side,
// for clients that cannot hold the client secret themselves
func (h *AuthHandler) GetOIDCCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		respondJSONError(w, http.StatusBadRequest, "Missing authorization code", "The 'code' query parameter is required")
		return
	}

	config, err := h.oidcProvider.GetConfig(ctx, h.providerName)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to get OIDC configuration", err.Error())
		return
	}

	token, err := oidc.NewClient(config).ExchangeCode(ctx, code)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Code exchange failed", err.Error())
		return
	}

	idToken, _ := token.Extra("id_token").(string)
	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": token.AccessToken,
		"id_token":     idToken,
		"token_type":   token.TokenType,
		"expires_at":   token.Expiry,
	})
}

// GetMe returns the authenticated tenant account
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	tenant := request.TenantFromContext(r)
	if tenant == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Tenant not found in context")
		return
	}

	respondJSON(w, http.StatusOK, tenant)
}

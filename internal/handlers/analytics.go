package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/reviewpulse/reviewpulse-api/internal/analytics"
	"github.com/reviewpulse/reviewpulse-api/internal/database"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"github.com/reviewpulse/reviewpulse-api/internal/request"
	"github.com/reviewpulse/reviewpulse-api/internal/validation"
	"go.uber.org/zap"
)

// Default and known views for the analytics endpoint
const (
	ViewOverview   = "overview"
	ViewTimeseries = "timeseries"
	ViewDrivers    = "drivers"
	ViewQuality    = "quality"
	ViewCompare    = "compare"
	ViewDrilldown  = "drilldown"
	ViewInsights   = "insights"
)

// AnalyticsHandler dispatches read-only analytics views
type AnalyticsHandler struct {
	service *analytics.Service
	logger  *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analytics.Service, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// RegisterRoutes registers analytics routes on the given router
// The router should already have the /api/v1 prefix
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analytics", h.GetAnalytics).Methods("GET")
}

// GetAnalytics resolves the requested view and runs it for the authenticated
// tenant. All views share the same date-range and location parameters.
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	tenant := request.TenantFromContext(r)
	if tenant == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Tenant not found in context")
		return
	}

	view := request.Param(r, "view")
	if view == "" {
		view = ViewOverview
	}

	q, err := h.parseQuery(r, view)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ctx := r.Context()
	var data any
	switch view {
	case ViewOverview:
		data, err = h.service.Overview(ctx, tenant.ID, q)
	case ViewTimeseries:
		data, err = h.service.Timeseries(ctx, tenant.ID, q)
	case ViewDrivers:
		data, err = h.service.Drivers(ctx, tenant.ID, q)
	case ViewQuality:
		data, err = h.service.Quality(ctx, tenant.ID, q)
	case ViewCompare:
		data, err = h.service.Compare(ctx, tenant.ID, q)
	case ViewDrilldown:
		data, err = h.service.Drilldown(ctx, tenant.ID, q)
	case ViewInsights:
		data, err = h.service.Insights(ctx, tenant.ID, q)
	default:
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "unknown view: "+view)
		return
	}

	if err != nil {
		h.respondServiceError(w, view, err)
		return
	}

	respondJSON(w, http.StatusOK, data)
}

// respondServiceError maps service errors onto HTTP status codes
func (h *AnalyticsHandler) respondServiceError(w http.ResponseWriter, view string, err error) {
	if errors.Is(err, database.ErrLocationNotFound) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "location not found")
		return
	}
	if errors.Is(err, context.Canceled) {
		// Client went away; nothing useful to write
		return
	}

	var fetchErr *analytics.FetchError
	if errors.As(err, &fetchErr) {
		h.logger.Error("analytics_fetch_failed",
			zap.String("view", view),
			zap.String("op", fetchErr.Op),
			zap.Error(fetchErr.Err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "failed to load reviews")
		return
	}

	h.logger.Error("analytics_view_failed",
		zap.String("view", view),
		zap.Error(err),
	)
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "failed to compute analytics")
}

// analyticsQueryParams carries the enum-valued query parameters through
// struct validation. The range preset is deliberately absent: unknown presets
// fall back to the default window at resolution time instead of being
// rejected at the boundary.
type analyticsQueryParams struct {
	Granularity string `validate:"omitempty,granularity"`
	Mode        string `validate:"omitempty,insight_mode"`
	Source      string `validate:"omitempty,tag_source"`
}

// parseQuery builds the service query from request parameters. Invalid enum
// values are rejected here so the service only sees well-formed input.
func (h *AnalyticsHandler) parseQuery(r *http.Request, view string) (analytics.Query, error) {
	q := analytics.Query{
		Preset: request.Param(r, "preset"),
		From:   request.Param(r, "from"),
		To:     request.Param(r, "to"),
		TZ:     request.Param(r, "tz"),
	}

	if raw := request.Param(r, "location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, errors.New("invalid location_id: must be a UUID")
		}
		q.LocationID = &id
	}

	params := analyticsQueryParams{Granularity: request.Param(r, "granularity")}
	if view == ViewInsights {
		params.Mode = request.Param(r, "mode")
	}
	if view == ViewDrilldown {
		params.Source = request.Param(r, "source")
	}
	if err := validation.Validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return q, fmt.Errorf("invalid %s: %v", strings.ToLower(fe.Field()), fe.Value())
		}
		return q, errors.New("invalid query parameters")
	}
	q.Granularity = params.Granularity

	switch view {
	case ViewInsights:
		q.Mode = models.InsightModeAuto
		if params.Mode != "" {
			q.Mode = models.InsightMode(params.Mode)
		}
	case ViewDrilldown:
		q.Tag = validation.SanitizeText(request.Param(r, "tag"))
		q.Source = models.TagSource(params.Source)
		if raw := request.Param(r, "tag_ids"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				id, err := uuid.Parse(strings.TrimSpace(part))
				if err != nil {
					return q, errors.New("invalid tag_ids: must be comma-separated UUIDs")
				}
				q.TagIDs = append(q.TagIDs, id)
			}
		}
		// AI-sourced drilldowns may address tags by id alone
		if q.Tag == "" && len(q.TagIDs) == 0 {
			return q, errors.New("drilldown requires a tag or tag_ids parameter")
		}
		var err error
		if q.Offset, err = parseIntParam(r, "offset", 0); err != nil {
			return q, err
		}
		if q.Offset < 0 {
			q.Offset = 0
		}
		if q.Limit, err = parseIntParam(r, "limit", 0); err != nil {
			return q, err
		}
	}

	return q, nil
}

func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := request.Param(r, name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, errors.New("invalid " + name + ": must be an integer")
	}
	return v, nil
}

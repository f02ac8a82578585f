package ai

import (
	"context"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// PromptContext carries the computed analytics an insight request is
// grounded in. The provider must not fabricate numbers beyond it.
type PromptContext struct {
	Compare models.Compare
	Series  []models.SeriesPoint
	Quality models.QualityRates
}

// InsightProvider generates an insight list from a prompt context. A nil
// provider or any returned error means the caller falls back to rule-based
// insights; provider failures are never surfaced to API callers.
type InsightProvider interface {
	GenerateInsights(ctx context.Context, promptCtx PromptContext) ([]models.Insight, error)
}

package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/database"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"github.com/reviewpulse/reviewpulse-api/internal/services/ai"
	"go.uber.org/zap"
)

type stubTagLinkRepo struct {
	listForReviews func(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error)
}

func (s *stubTagLinkRepo) ListForReviews(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error) {
	if s.listForReviews != nil {
		return s.listForReviews(ctx, reviewIDs, source)
	}
	return nil, nil
}

type stubInsightProvider struct {
	generate func(ctx context.Context, promptCtx ai.PromptContext) ([]models.Insight, error)
	calls    int
}

func (s *stubInsightProvider) GenerateInsights(ctx context.Context, promptCtx ai.PromptContext) ([]models.Insight, error) {
	s.calls++
	if s.generate != nil {
		return s.generate(ctx, promptCtx)
	}
	return nil, errors.New("not configured")
}

// serviceDeps bundles the stubs a service test wires up.
type serviceDeps struct {
	reviews   *stubReviewRepo
	tagLinks  *stubTagLinkRepo
	locations *stubLocationRepo
	provider  ai.InsightProvider
}

func newTestService(deps serviceDeps) *Service {
	if deps.reviews == nil {
		deps.reviews = &stubReviewRepo{}
	}
	if deps.tagLinks == nil {
		deps.tagLinks = &stubTagLinkRepo{}
	}
	if deps.locations == nil {
		deps.locations = &stubLocationRepo{}
	}
	svc := NewService(deps.reviews, deps.tagLinks, deps.locations, deps.provider, zap.NewNop())
	svc.SetNow(func() time.Time { return fixedNow })
	return svc
}

func oneLocation() *stubLocationRepo {
	id := uuid.New()
	return &stubLocationRepo{
		listIDsByTenant: func(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{id}, nil
		},
	}
}

func fixedReviews(ratings ...int) []*models.Review {
	at := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	out := make([]*models.Review, len(ratings))
	for i, rating := range ratings {
		out[i] = reviewAt(at.Add(time.Duration(i)*time.Hour), rating)
	}
	return out
}

func TestOverview_NoLocations(t *testing.T) {
	t.Parallel()

	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				t.Error("No fetch should happen for an empty scope")
				return nil, nil
			},
		},
	})

	out, err := svc.Overview(context.Background(), uuid.New(), Query{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.DataStatus != models.DataStatusEmpty {
		t.Errorf("DataStatus = %q", out.DataStatus)
	}
	if len(out.Reasons) != 1 || out.Reasons[0] != models.ReasonNoLocations {
		t.Errorf("Reasons = %v", out.Reasons)
	}
	if out.KPIs.ReviewCount != 0 {
		t.Errorf("ReviewCount = %d", out.KPIs.ReviewCount)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		truncated   bool
		reviewCount int
		wantStatus  models.DataStatus
		wantReasons []string
	}{
		{"ok", false, 12, models.DataStatusOK, []string{}},
		{"empty scope with no rows", false, 0, models.DataStatusEmpty, []string{"no_reviews"}},
		{"truncated", true, 20000, models.DataStatusTruncated, []string{"fetch_capped"}},
		{"truncated wins over empty", true, 0, models.DataStatusTruncated, []string{"fetch_capped"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, reasons := statusFor(tt.truncated, tt.reviewCount)
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if len(reasons) != len(tt.wantReasons) {
				t.Fatalf("reasons = %v, want %v", reasons, tt.wantReasons)
			}
			for i := range reasons {
				if reasons[i] != tt.wantReasons[i] {
					t.Errorf("reasons = %v, want %v", reasons, tt.wantReasons)
				}
			}
		})
	}
}

func TestOverview_ComputesKPIs(t *testing.T) {
	t.Parallel()

	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return fixedReviews(5, 4, 1), nil
			},
		},
		locations: oneLocation(),
	})

	out, err := svc.Overview(context.Background(), uuid.New(), Query{Preset: PresetLast30Days})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.DataStatus != models.DataStatusOK {
		t.Errorf("DataStatus = %q", out.DataStatus)
	}
	if out.KPIs.ReviewCount != 3 {
		t.Errorf("ReviewCount = %d", out.KPIs.ReviewCount)
	}
	if out.KPIs.AvgRating == nil || *out.KPIs.AvgRating != 3.3 {
		t.Errorf("AvgRating = %v", out.KPIs.AvgRating)
	}
	if out.Ratings["5"] != 1 || out.Ratings["1"] != 1 {
		t.Errorf("Ratings = %v", out.Ratings)
	}
}

func TestOverview_UnknownLocation(t *testing.T) {
	t.Parallel()

	svc := newTestService(serviceDeps{})
	locationID := uuid.New()

	_, err := svc.Overview(context.Background(), uuid.New(), Query{LocationID: &locationID})
	if !errors.Is(err, database.ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestTimeseries_EmptyScopeStaysGapless(t *testing.T) {
	t.Parallel()

	svc := newTestService(serviceDeps{})
	out, err := svc.Timeseries(context.Background(), uuid.New(), Query{Preset: PresetLast7Days})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.DataStatus != models.DataStatusEmpty {
		t.Errorf("DataStatus = %q", out.DataStatus)
	}
	if len(out.Points) != 7 {
		t.Errorf("got %d points, want a gapless 7", len(out.Points))
	}
	for _, p := range out.Points {
		if p.Count != 0 {
			t.Errorf("bucket %s has count %d", p.Date, p.Count)
		}
	}
}

func TestService_TruncatedStatus(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return makeReviews(fetchPageSize, at), nil
			},
		},
		locations: oneLocation(),
	})

	out, err := svc.Quality(context.Background(), uuid.New(), Query{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.DataStatus != models.DataStatusTruncated {
		t.Errorf("DataStatus = %q", out.DataStatus)
	}
	if len(out.Reasons) != 1 || out.Reasons[0] != models.ReasonFetchCapped {
		t.Errorf("Reasons = %v", out.Reasons)
	}
}

func TestDrivers_PrefersAITagSource(t *testing.T) {
	t.Parallel()

	var sources []models.TagSource
	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return fixedReviews(4, 2), nil
			},
		},
		tagLinks: &stubTagLinkRepo{
			listForReviews: func(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error) {
				sources = append(sources, source)
				if source == models.TagSourceAI {
					return []*models.TagLink{link("service", models.SentimentPositive)}, nil
				}
				return nil, nil
			},
		},
		locations: oneLocation(),
	})

	out, err := svc.Drivers(context.Background(), uuid.New(), Query{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Source != models.TagSourceAI {
		t.Errorf("Source = %q, want ai", out.Source)
	}
	// Both the current and the previous period must read the chosen source.
	for _, s := range sources[1:] {
		if s != models.TagSourceAI && s != sources[0] {
			t.Errorf("Mixed sources across periods: %v", sources)
		}
	}
}

func TestDrivers_FallsBackToManual(t *testing.T) {
	t.Parallel()

	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return fixedReviews(4), nil
			},
		},
		tagLinks: &stubTagLinkRepo{
			listForReviews: func(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error) {
				if source == models.TagSourceManual {
					return []*models.TagLink{
						link("wait", models.SentimentNegative),
						link("wait", models.SentimentNegative),
					}, nil
				}
				return nil, nil
			},
		},
		locations: oneLocation(),
	})

	out, err := svc.Drivers(context.Background(), uuid.New(), Query{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Source != models.TagSourceManual {
		t.Errorf("Source = %q, want manual", out.Source)
	}
	if len(out.Irritants) != 1 || out.Irritants[0].Label != "wait" {
		t.Errorf("Irritants = %+v", out.Irritants)
	}
}

func TestCompare_Labels(t *testing.T) {
	t.Parallel()

	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				if !to.Before(fixedNow) {
					return fixedReviews(5, 4), nil
				}
				return fixedReviews(3), nil
			},
		},
		locations: oneLocation(),
	})

	out, err := svc.Compare(context.Background(), uuid.New(), Query{Preset: PresetLast30Days})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.LabelA != "current" {
		t.Errorf("LabelA = %q", out.LabelA)
	}
	if out.LabelB != "previous_last_30_days" {
		t.Errorf("LabelB = %q", out.LabelB)
	}
	count := out.Metrics["review_count"]
	if count.A == nil || *count.A != 2 || count.B == nil || *count.B != 1 {
		t.Errorf("review_count = %+v", count)
	}
}

func TestInsights_AISuccess(t *testing.T) {
	t.Parallel()

	generated := []models.Insight{
		{Title: "Ratings improved", Detail: "d", Severity: models.SeverityGood, MetricKeys: []string{"avg_rating"}},
		{Title: "Volume steady", Detail: "d", Severity: models.SeverityWarn, MetricKeys: []string{"review_count"}},
		{Title: "Replies slipping", Detail: "d", Severity: models.SeverityBad, MetricKeys: []string{"reply_rate"}},
		{Title: "Negatives contained", Detail: "d", Severity: models.SeverityGood, MetricKeys: []string{"neg_share"}},
	}
	provider := &stubInsightProvider{
		generate: func(ctx context.Context, promptCtx ai.PromptContext) ([]models.Insight, error) {
			return generated, nil
		},
	}
	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return fixedReviews(4, 3), nil
			},
		},
		locations: oneLocation(),
		provider:  provider,
	})

	out, err := svc.Insights(context.Background(), uuid.New(), Query{Mode: models.InsightModeAuto})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Mode != models.InsightModeAI {
		t.Errorf("Mode = %q", out.Mode)
	}
	if !out.UsedAI {
		t.Error("Expected UsedAI after a successful generation")
	}
	if len(out.Insights) != len(generated) || out.Insights[0].Title != "Ratings improved" {
		t.Errorf("Insights = %+v", out.Insights)
	}
}

func TestInsights_AIErrorFallsBackToRules(t *testing.T) {
	t.Parallel()

	provider := &stubInsightProvider{
		generate: func(ctx context.Context, promptCtx ai.PromptContext) ([]models.Insight, error) {
			return nil, errors.New("model timeout")
		},
	}
	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return fixedReviews(4, 3), nil
			},
		},
		locations: oneLocation(),
		provider:  provider,
	})

	out, err := svc.Insights(context.Background(), uuid.New(), Query{Mode: models.InsightModeAuto})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Mode != models.InsightModeAI {
		t.Errorf("Mode = %q, want ai even when the attempt failed", out.Mode)
	}
	if out.UsedAI {
		t.Error("UsedAI must stay false on provider failure")
	}
	if len(out.Insights) < 4 {
		t.Errorf("got %d rule insights, want at least 4", len(out.Insights))
	}
}

func TestInsights_BasicModeSkipsProvider(t *testing.T) {
	t.Parallel()

	provider := &stubInsightProvider{}
	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return fixedReviews(4), nil
			},
		},
		locations: oneLocation(),
		provider:  provider,
	})

	out, err := svc.Insights(context.Background(), uuid.New(), Query{Mode: models.InsightModeBasic})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("Provider called %d times in basic mode", provider.calls)
	}
	if out.Mode != models.InsightModeBasic || out.UsedAI {
		t.Errorf("Mode = %q, UsedAI = %v", out.Mode, out.UsedAI)
	}
}

func TestInsights_NilProviderUsesRules(t *testing.T) {
	t.Parallel()

	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return fixedReviews(4), nil
			},
		},
		locations: oneLocation(),
	})

	out, err := svc.Insights(context.Background(), uuid.New(), Query{Mode: models.InsightModeAuto})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Mode != models.InsightModeBasic || out.UsedAI {
		t.Errorf("Mode = %q, UsedAI = %v", out.Mode, out.UsedAI)
	}
	if len(out.Insights) < 4 {
		t.Errorf("got %d insights", len(out.Insights))
	}
}

func TestDrilldown_TagFilterAndPaging(t *testing.T) {
	t.Parallel()

	reviews := fixedReviews(2, 2, 5)
	svc := newTestService(serviceDeps{
		reviews: &stubReviewRepo{
			listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
				return reviews, nil
			},
		},
		tagLinks: &stubTagLinkRepo{
			listForReviews: func(ctx context.Context, reviewIDs []uuid.UUID, source models.TagSource) ([]*models.TagLink, error) {
				return []*models.TagLink{
					{ReviewID: reviews[0].ID, Label: "Wait", Source: models.TagSourceManual, Sentiment: models.SentimentNegative},
					{ReviewID: reviews[1].ID, Label: "wait ", Source: models.TagSourceManual, Sentiment: models.SentimentNegative},
					{ReviewID: reviews[2].ID, Label: "service", Source: models.TagSourceManual, Sentiment: models.SentimentPositive},
				}, nil
			},
		},
		locations: oneLocation(),
	})

	out, err := svc.Drilldown(context.Background(), uuid.New(), Query{Tag: "WAIT"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Pagination.Total != 2 {
		t.Errorf("Total = %d", out.Pagination.Total)
	}
	if len(out.Items) != 2 {
		t.Fatalf("got %d items", len(out.Items))
	}
	if out.Source != models.TagSourceManual {
		t.Errorf("Source = %q", out.Source)
	}
}

package analytics

import (
	"testing"
	"time"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

func TestMetricDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     *float64
		allowPct bool
		delta    *float64
		deltaPct *float64
	}{
		{"both present", floatPtr(12), floatPtr(10), true, floatPtr(2), floatPtr(0.2)},
		{"missing current", nil, floatPtr(10), true, nil, nil},
		{"missing previous", floatPtr(12), nil, true, nil, nil},
		{"zero base has no pct", floatPtr(5), floatPtr(0), true, floatPtr(5), nil},
		{"pct suppressed", floatPtr(4.5), floatPtr(4.0), false, floatPtr(0.5), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cell := metricDelta(tt.a, tt.b, tt.allowPct)
			assertFloatPtr(t, "Delta", cell.Delta, tt.delta)
			assertFloatPtr(t, "DeltaPct", cell.DeltaPct, tt.deltaPct)
		})
	}
}

func assertFloatPtr(t *testing.T, field string, got, want *float64) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %v, want nil", field, *got)
	case want != nil && got == nil:
		t.Errorf("%s = nil, want %v", field, *want)
	case want != nil && got != nil && *got != *want:
		t.Errorf("%s = %v, want %v", field, *got, *want)
	}
}

func TestComparePeriods(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	prevBase := base.AddDate(0, 0, -30)

	current := []*models.Review{
		reviewAt(base, 5),
		reviewAt(base, 4),
		reviewAt(base, 1),
	}
	previous := []*models.Review{
		reviewAt(prevBase, 3),
		reviewAt(prevBase, 3),
	}

	rngA := models.DateRange{
		From:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
		Preset: PresetLast30Days,
	}

	cmp := ComparePeriods(current, previous, rngA, rngA.Previous())

	if cmp.LabelA != "current" {
		t.Errorf("LabelA = %q", cmp.LabelA)
	}
	if cmp.LabelB != "previous_last_30_days" {
		t.Errorf("LabelB = %q", cmp.LabelB)
	}

	count := cmp.Metrics[models.MetricReviewCount]
	if count.A == nil || *count.A != 3 || count.B == nil || *count.B != 2 {
		t.Errorf("review_count = %+v", count)
	}
	if count.DeltaPct == nil || *count.DeltaPct != 0.5 {
		t.Errorf("review_count.DeltaPct = %v, want 0.5", count.DeltaPct)
	}

	rating := cmp.Metrics[models.MetricAvgRating]
	if rating.A == nil || *rating.A != 3.3 {
		t.Errorf("avg_rating.A = %v, want 3.3", rating.A)
	}
	if rating.DeltaPct != nil {
		t.Errorf("avg_rating must never carry a pct, got %v", *rating.DeltaPct)
	}
}

func TestComparePeriods_EmptyPrevious(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	rng := models.DateRange{
		From:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
		Preset: PresetThisMonth,
	}

	cmp := ComparePeriods([]*models.Review{reviewAt(base, 4)}, nil, rng, rng.Previous())

	// Counts exist for both periods; zero base suppresses the pct only
	count := cmp.Metrics[models.MetricReviewCount]
	if count.Delta == nil || *count.Delta != 1 {
		t.Errorf("review_count.Delta = %v, want 1", count.Delta)
	}
	if count.DeltaPct != nil {
		t.Errorf("review_count.DeltaPct = %v, want nil on zero base", *count.DeltaPct)
	}

	// The undefined previous rating yields no delta at all
	rating := cmp.Metrics[models.MetricAvgRating]
	if rating.B != nil || rating.Delta != nil {
		t.Errorf("avg_rating should be undefined for an empty previous period, got %+v", rating)
	}
}

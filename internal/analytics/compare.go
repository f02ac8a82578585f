package analytics

import (
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// periodMetrics are the four core metrics of one period, unrounded except
// for avg rating. Nil means undefined (zero denominator).
type periodMetrics struct {
	reviewCount float64
	avgRating   *float64
	negShare    *float64
	replyRate   *float64
}

func computePeriodMetrics(reviews []*models.Review) periodMetrics {
	m := periodMetrics{reviewCount: float64(len(reviews))}

	var ratingSum float64
	ratingCount := 0
	negative := 0
	replyable := 0
	replied := 0

	for _, review := range reviews {
		if review.Rating != nil {
			ratingSum += float64(*review.Rating)
			ratingCount++
		}
		if review.Negative() {
			negative++
		}
		if review.Replyable() {
			replyable++
			if review.Replied() {
				replied++
			}
		}
	}

	if ratingCount > 0 {
		m.avgRating = floatPtr(round1(ratingSum / float64(ratingCount)))
	}
	if n := ratio(negative, len(reviews)); n != nil {
		m.negShare = floatPtr(round2(*n))
	}
	if r := ratio(replied, replyable); r != nil {
		m.replyRate = floatPtr(round2(*r))
	}

	return m
}

// metricDelta builds the a/b/delta/delta_pct cell for one metric. Delta
// needs both values; delta_pct additionally needs a non-zero base. allowPct
// is false for avg_rating, whose point delta has no natural percentage.
func metricDelta(a, b *float64, allowPct bool) models.MetricDelta {
	cell := models.MetricDelta{A: a, B: b}
	if a == nil || b == nil {
		return cell
	}
	cell.Delta = floatPtr(round2(*a - *b))
	if allowPct && *b != 0 {
		cell.DeltaPct = floatPtr(round2(*cell.Delta / *b))
	}
	return cell
}

// ComparePeriods computes deltas for the four core metrics between two
// already-fetched row sets: a is the current period, b the previous one.
func ComparePeriods(current, previous []*models.Review, rngA, rngB models.DateRange) models.Compare {
	a := computePeriodMetrics(current)
	b := computePeriodMetrics(previous)

	return models.Compare{
		LabelA:  "current",
		LabelB:  "previous_" + rngA.Preset,
		PeriodA: rngA.Period(),
		PeriodB: rngB.Period(),
		Metrics: map[string]models.MetricDelta{
			models.MetricReviewCount: metricDelta(floatPtr(a.reviewCount), floatPtr(b.reviewCount), true),
			models.MetricAvgRating:   metricDelta(a.avgRating, b.avgRating, false),
			models.MetricNegShare:    metricDelta(a.negShare, b.negShare, true),
			models.MetricReplyRate:   metricDelta(a.replyRate, b.replyRate, true),
		},
	}
}

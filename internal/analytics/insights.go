package analytics

import (
	"fmt"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// maxInsights caps every generated list, rule-based or AI.
const maxInsights = 7

// Rule thresholds. Exact values matter for reproducibility; tests pin them.
const (
	replyRateBadBelow = 0.50
	replyRateGoodFrom = 0.70
	negShareBadFrom   = 0.15
	negShareWarnFrom  = 0.08
	ratingDeltaBadAt  = -0.4
	ratingDeltaWarnAt = -0.2
	ratingDeltaGoodAt = 0.2
	volumeDeltaWarnAt = -0.3
	volumeDeltaGoodAt = 0.3
)

// BuildRuleInsights emits deterministic insights from fixed thresholds on the
// comparison metrics, an optional recent-trend insight from the last two
// series points, and a strength highlight when nothing else is good.
func BuildRuleInsights(cmp models.Compare, series []models.SeriesPoint) []models.Insight {
	var insights []models.Insight

	insights = append(insights, replyRateInsight(cmp.Metrics[models.MetricReplyRate]))
	insights = append(insights, negShareInsight(cmp.Metrics[models.MetricNegShare]))
	insights = append(insights, ratingDeltaInsight(cmp.Metrics[models.MetricAvgRating]))
	insights = append(insights, volumeInsight(cmp.Metrics[models.MetricReviewCount]))

	if trend := trendInsight(series); trend != nil {
		insights = append(insights, *trend)
	}

	hasGood := false
	for _, ins := range insights {
		if ins.Severity == models.SeverityGood {
			hasGood = true
			break
		}
	}
	if !hasGood {
		insights = append(insights, strengthHighlight(cmp))
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

func replyRateInsight(m models.MetricDelta) models.Insight {
	ins := models.Insight{
		Title:      "Reply coverage",
		MetricKeys: []string{models.MetricReplyRate},
	}
	switch {
	case m.A == nil:
		ins.Severity = models.SeverityWarn
		ins.Detail = "No replyable reviews in this period, so reply coverage cannot be measured."
	case *m.A < replyRateBadBelow:
		ins.Severity = models.SeverityBad
		ins.Detail = fmt.Sprintf("Only %.0f%% of reviews with text received a reply. Unanswered reviews hurt trust and local ranking.", *m.A*100)
	case *m.A < replyRateGoodFrom:
		ins.Severity = models.SeverityWarn
		ins.Detail = fmt.Sprintf("%.0f%% of reviews with text received a reply. Aim for 70%% or more.", *m.A*100)
	default:
		ins.Severity = models.SeverityGood
		ins.Detail = fmt.Sprintf("%.0f%% of reviews with text received a reply. Keep it up.", *m.A*100)
	}
	return ins
}

func negShareInsight(m models.MetricDelta) models.Insight {
	ins := models.Insight{
		Title:      "Negative review share",
		MetricKeys: []string{models.MetricNegShare},
	}
	switch {
	case m.A == nil:
		ins.Severity = models.SeverityWarn
		ins.Detail = "No reviews in this period, so the negative share cannot be measured."
	case *m.A >= negShareBadFrom:
		ins.Severity = models.SeverityBad
		ins.Detail = fmt.Sprintf("%.0f%% of reviews rate 2 stars or below. Investigate the main irritants.", *m.A*100)
	case *m.A >= negShareWarnFrom:
		ins.Severity = models.SeverityWarn
		ins.Detail = fmt.Sprintf("%.0f%% of reviews rate 2 stars or below. Watch the trend.", *m.A*100)
	default:
		ins.Severity = models.SeverityGood
		ins.Detail = fmt.Sprintf("Only %.0f%% of reviews rate 2 stars or below.", *m.A*100)
	}
	return ins
}

func ratingDeltaInsight(m models.MetricDelta) models.Insight {
	ins := models.Insight{
		Title:      "Rating trend",
		MetricKeys: []string{models.MetricAvgRating},
	}
	switch {
	case m.Delta == nil:
		ins.Severity = models.SeverityWarn
		ins.Detail = "Not enough rated reviews in both periods to compare the average rating."
	case *m.Delta <= ratingDeltaBadAt:
		ins.Severity = models.SeverityBad
		ins.Detail = fmt.Sprintf("Average rating dropped by %.1f points versus the previous period.", -*m.Delta)
	case *m.Delta <= ratingDeltaWarnAt:
		ins.Severity = models.SeverityWarn
		ins.Detail = fmt.Sprintf("Average rating slipped by %.1f points versus the previous period.", -*m.Delta)
	case *m.Delta >= ratingDeltaGoodAt:
		ins.Severity = models.SeverityGood
		ins.Detail = fmt.Sprintf("Average rating improved by %.1f points versus the previous period.", *m.Delta)
	default:
		ins.Severity = models.SeverityWarn
		ins.Detail = "Average rating is roughly flat versus the previous period."
	}
	return ins
}

func volumeInsight(m models.MetricDelta) models.Insight {
	ins := models.Insight{
		Title:      "Review volume",
		MetricKeys: []string{models.MetricReviewCount},
	}
	switch {
	case m.DeltaPct == nil:
		ins.Severity = models.SeverityWarn
		ins.Detail = "No baseline volume in the previous period to compare against."
	case *m.DeltaPct <= volumeDeltaWarnAt:
		ins.Severity = models.SeverityWarn
		ins.Detail = fmt.Sprintf("Review volume fell %.0f%% versus the previous period.", -*m.DeltaPct*100)
	case *m.DeltaPct >= volumeDeltaGoodAt:
		ins.Severity = models.SeverityGood
		ins.Detail = fmt.Sprintf("Review volume grew %.0f%% versus the previous period.", *m.DeltaPct*100)
	default:
		ins.Severity = models.SeverityWarn
		ins.Detail = "Review volume is roughly stable versus the previous period."
	}
	return ins
}

// trendInsight compares the last two series points by review count. Nil when
// the series is too short or flat.
func trendInsight(series []models.SeriesPoint) *models.Insight {
	if len(series) < 2 {
		return nil
	}
	last := series[len(series)-1]
	prev := series[len(series)-2]
	if last.Count == prev.Count {
		return nil
	}

	ins := models.Insight{
		Title:      "Recent trend",
		MetricKeys: []string{models.MetricTimeseries},
	}
	if last.Count > prev.Count {
		ins.Severity = models.SeverityGood
		ins.Detail = fmt.Sprintf("The latest period unit has %d reviews, up from %d in the one before.", last.Count, prev.Count)
	} else {
		ins.Severity = models.SeverityWarn
		ins.Detail = fmt.Sprintf("The latest period unit has %d reviews, down from %d in the one before.", last.Count, prev.Count)
	}
	return &ins
}

// strengthHighlight produces the fallback good insight when every rule came
// out warn or bad.
func strengthHighlight(cmp models.Compare) models.Insight {
	ins := models.Insight{
		Title:    "Something to build on",
		Severity: models.SeverityGood,
	}
	if rating := cmp.Metrics[models.MetricAvgRating]; rating.A != nil {
		ins.Detail = fmt.Sprintf("Your average rating stands at %.1f. Replying to recent reviews is the fastest way to lift the other numbers.", *rating.A)
		ins.MetricKeys = []string{models.MetricAvgRating}
		return ins
	}
	if count := cmp.Metrics[models.MetricReviewCount]; count.A != nil && *count.A > 0 {
		ins.Detail = fmt.Sprintf("You collected %.0f reviews this period. Every reply to them compounds.", *count.A)
		ins.MetricKeys = []string{models.MetricReviewCount}
		return ins
	}
	ins.Detail = "Connect your locations and start collecting reviews to unlock trend insights."
	ins.MetricKeys = []string{models.MetricReviewCount}
	return ins
}

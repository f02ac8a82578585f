package models

// InsightSeverity is the closed severity vocabulary for insights.
type InsightSeverity string

const (
	SeverityGood InsightSeverity = "good"
	SeverityWarn InsightSeverity = "warn"
	SeverityBad  InsightSeverity = "bad"
)

// ValidSeverity reports whether s is in the closed vocabulary.
func ValidSeverity(s InsightSeverity) bool {
	switch s {
	case SeverityGood, SeverityWarn, SeverityBad:
		return true
	}
	return false
}

// Metric keys an insight may reference. Closed vocabulary; the AI response
// validator rejects anything outside it.
const (
	MetricReviewCount = "review_count"
	MetricAvgRating   = "avg_rating"
	MetricNegShare    = "neg_share"
	MetricReplyRate   = "reply_rate"
	MetricTimeseries  = "timeseries"
)

// ValidMetricKey reports whether k is in the closed vocabulary.
func ValidMetricKey(k string) bool {
	switch k {
	case MetricReviewCount, MetricAvgRating, MetricNegShare, MetricReplyRate, MetricTimeseries:
		return true
	}
	return false
}

// Insight is one generated finding. Generated fresh per request, never
// persisted.
type Insight struct {
	Title      string          `json:"title"`
	Detail     string          `json:"detail"`
	Severity   InsightSeverity `json:"severity"`
	MetricKeys []string        `json:"metric_keys"`
}

// InsightMode selects how insights are generated.
type InsightMode string

const (
	InsightModeAuto  InsightMode = "auto"
	InsightModeAI    InsightMode = "ai"
	InsightModeBasic InsightMode = "basic"
)

// InsightReport is the insights view. Mode reflects which path was attempted;
// UsedAI reflects whether the AI path actually produced the list.
type InsightReport struct {
	Period   PeriodInfo  `json:"period"`
	Mode     InsightMode `json:"mode"`
	UsedAI   bool        `json:"used_ai"`
	Insights []Insight   `json:"insights"`
}

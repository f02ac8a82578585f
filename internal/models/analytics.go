package models

import (
	"time"

	"github.com/google/uuid"
)

// Granularity selects the bucket size of a timeseries.
type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

// DateRange is a concrete UTC window with inclusive bounds, as resolved from
// a preset or explicit from/to. AllTime marks windows whose reported lower
// bound is open even though the query uses a bounded sentinel.
type DateRange struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Preset  string    `json:"preset"`
	TZ      string    `json:"tz"`
	AllTime bool      `json:"-"`
}

// Duration returns the window length.
func (d DateRange) Duration() time.Duration {
	return d.To.Sub(d.From)
}

// Previous returns the window of equal duration immediately preceding this
// one. The shift is exact, not calendar-aware: a 31-day window shifts back
// by 31 days regardless of month lengths.
func (d DateRange) Previous() DateRange {
	dur := d.To.Sub(d.From)
	to := d.From.Add(-time.Second)
	return DateRange{
		From:   to.Add(-dur),
		To:     to,
		Preset: d.Preset,
		TZ:     d.TZ,
	}
}

// PeriodInfo is the window description attached to responses. From is null
// for all_time windows.
type PeriodInfo struct {
	Preset string     `json:"preset"`
	From   *time.Time `json:"from"`
	To     time.Time  `json:"to"`
	TZ     string     `json:"tz"`
}

// Period renders a DateRange for responses.
func (d DateRange) Period() PeriodInfo {
	p := PeriodInfo{Preset: d.Preset, To: d.To, TZ: d.TZ}
	if !d.AllTime {
		from := d.From
		p.From = &from
	}
	return p
}

// DataStatus qualifies a computed result.
type DataStatus string

const (
	DataStatusOK        DataStatus = "ok"
	DataStatusEmpty     DataStatus = "empty"
	DataStatusTruncated DataStatus = "truncated"
)

// Data-status reasons attached to responses alongside DataStatus.
const (
	ReasonNoLocations = "no_locations"
	ReasonFetchCapped = "fetch_capped"
	ReasonNoReviews   = "no_reviews"
)

// SeriesPoint is one bucket of a gapless timeseries. Rates are fractions in
// [0,1]; a nil pointer means the denominator was zero.
type SeriesPoint struct {
	Date      string   `json:"date"`
	Count     int      `json:"count"`
	AvgRating *float64 `json:"avg_rating"`
	NegShare  *float64 `json:"neg_share"`
	ReplyRate *float64 `json:"reply_rate"`
}

// OverviewKPIs are the whole-range headline numbers. Percentages are rounded
// integers in [0,100]; nil when undefined or clamped out as malformed.
type OverviewKPIs struct {
	ReviewCount     int      `json:"review_count"`
	AvgRating       *float64 `json:"avg_rating"`
	NegSharePct     *int     `json:"neg_share_pct"`
	ResponseRatePct *int     `json:"response_rate_pct"`
}

// Overview is the default analytics view.
type Overview struct {
	Period     PeriodInfo      `json:"period"`
	DataStatus DataStatus      `json:"data_status"`
	Reasons    []string        `json:"reasons"`
	KPIs       OverviewKPIs    `json:"kpis"`
	Ratings    map[string]int  `json:"ratings"`
	Sentiment  SentimentTotals `json:"sentiment"`
	Topics     []TopicCount    `json:"topics"`
}

// SentimentTotals is the sentiment distribution over tag links in range.
type SentimentTotals struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// TopicCount is a top-tag entry on the overview.
type TopicCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Timeseries is the bucketed view.
type Timeseries struct {
	Period      PeriodInfo    `json:"period"`
	Granularity Granularity   `json:"granularity"`
	DataStatus  DataStatus    `json:"data_status"`
	Reasons     []string      `json:"reasons"`
	Points      []SeriesPoint `json:"points"`
}

// DriverStat is a ranked strengths/irritants entry.
type DriverStat struct {
	Label        string   `json:"label"`
	Count        int      `json:"count"`
	Positive     int      `json:"positive"`
	Negative     int      `json:"negative"`
	Neutral      int      `json:"neutral"`
	NetSentiment int      `json:"net_sentiment"`
	SharePct     *float64 `json:"share_pct"`
	Delta        *int     `json:"delta"`
	DeltaPct     *float64 `json:"delta_pct"`
}

// DriverTotals carries aggregate counts for the drivers view. TaggedCount
// includes tags that rank in neither list.
type DriverTotals struct {
	TaggedCount int `json:"tagged_count"`
	UniqueTags  int `json:"unique_tags"`
}

// Drivers is the tag-driver view.
type Drivers struct {
	Period     PeriodInfo   `json:"period"`
	Source     TagSource    `json:"source"`
	DataStatus DataStatus   `json:"data_status"`
	Reasons    []string     `json:"reasons"`
	Totals     DriverTotals `json:"totals"`
	Strengths  []DriverStat `json:"strengths"`
	Irritants  []DriverStat `json:"irritants"`
}

// QualityRates are reply-quality metrics. Nil when no valid delay samples.
type QualityRates struct {
	AvgReplyDelayHours *float64 `json:"avg_reply_delay_hours"`
	SLA24h             *float64 `json:"sla_24h"`
}

// QualityCounts are the raw counters behind the rates.
type QualityCounts struct {
	Replyable       int `json:"replyable"`
	Replied         int `json:"replied"`
	RepliedWithTime int `json:"replied_with_time"`
}

// Quality is the SLA view.
type Quality struct {
	Period     PeriodInfo    `json:"period"`
	DataStatus DataStatus    `json:"data_status"`
	Reasons    []string      `json:"reasons"`
	Rates      QualityRates  `json:"rates"`
	Counts     QualityCounts `json:"counts"`
}

// MetricDelta compares one metric across two periods. Delta is defined only
// when both values are; DeltaPct additionally needs a non-zero base.
type MetricDelta struct {
	A        *float64 `json:"a"`
	B        *float64 `json:"b"`
	Delta    *float64 `json:"delta"`
	DeltaPct *float64 `json:"delta_pct"`
}

// Compare is the period-over-period view.
type Compare struct {
	LabelA     string                 `json:"label_a"`
	LabelB     string                 `json:"label_b"`
	PeriodA    PeriodInfo             `json:"period_a"`
	PeriodB    PeriodInfo             `json:"period_b"`
	DataStatus DataStatus             `json:"data_status"`
	Reasons    []string               `json:"reasons"`
	Metrics    map[string]MetricDelta `json:"metrics"`
}

// DrilldownItem is one raw review row in a drilldown page.
type DrilldownItem struct {
	ID         uuid.UUID  `json:"id"`
	LocationID uuid.UUID  `json:"location_id"`
	Rating     *int       `json:"rating"`
	Comment    *string    `json:"comment"`
	Time       *time.Time `json:"time"`
	Replied    bool       `json:"replied"`
}

// DrilldownPage carries offset pagination state. HasMore is computed from the
// full matching set, not the returned slice.
type DrilldownPage struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// Drilldown is the tag-filtered raw listing view.
type Drilldown struct {
	Period     PeriodInfo      `json:"period"`
	Tag        string          `json:"tag"`
	Source     TagSource       `json:"source"`
	DataStatus DataStatus      `json:"data_status"`
	Reasons    []string        `json:"reasons"`
	Items      []DrilldownItem `json:"items"`
	Pagination DrilldownPage   `json:"pagination"`
}

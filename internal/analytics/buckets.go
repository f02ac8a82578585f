package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// dayGranularityMaxDays is the longest range (whole inclusive days) still
// bucketed per day when the caller does not pick a granularity.
const dayGranularityMaxDays = 90

// bucket accumulates per-unit counters during series construction.
type bucket struct {
	count       int
	ratingSum   float64
	ratingCount int
	negative    int
	replyable   int
	replied     int
}

// ResolveGranularity returns the explicit granularity when valid, otherwise
// picks day for ranges of at most 90 inclusive days and week beyond that.
func ResolveGranularity(rng models.DateRange, explicit string) models.Granularity {
	switch models.Granularity(explicit) {
	case models.GranularityDay:
		return models.GranularityDay
	case models.GranularityWeek:
		return models.GranularityWeek
	}
	if inclusiveDays(rng) <= dayGranularityMaxDays {
		return models.GranularityDay
	}
	return models.GranularityWeek
}

// dayFloorUTC truncates to the UTC calendar day.
func dayFloorUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// weekFloorUTC truncates to the UTC Monday of the ISO week. Sunday counts as
// weekday 7.
func weekFloorUTC(t time.Time) time.Time {
	day := dayFloorUTC(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func bucketFloor(t time.Time, g models.Granularity) time.Time {
	if g == models.GranularityWeek {
		return weekFloorUTC(t)
	}
	return dayFloorUTC(t)
}

func bucketKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// BuildSeries partitions reviews into contiguous buckets and emits one point
// per calendar unit from floor(from) to floor(to) inclusive. The output is
// gapless regardless of data sparsity; units with no reviews carry zero
// counts and null rates. Reviews without an effective time are skipped.
func BuildSeries(reviews []*models.Review, rng models.DateRange, g models.Granularity) []models.SeriesPoint {
	buckets := make(map[string]*bucket)
	for _, review := range reviews {
		et := review.EffectiveTime()
		if et == nil {
			continue
		}
		key := bucketKey(bucketFloor(*et, g))
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		if review.Rating != nil {
			b.ratingSum += float64(*review.Rating)
			b.ratingCount++
		}
		if review.Negative() {
			b.negative++
		}
		if review.Replyable() {
			b.replyable++
			if review.Replied() {
				b.replied++
			}
		}
	}

	step := 1
	if g == models.GranularityWeek {
		step = 7
	}

	start := bucketFloor(rng.From, g)
	end := bucketFloor(rng.To, g)

	var points []models.SeriesPoint
	for unit := start; !unit.After(end); unit = unit.AddDate(0, 0, step) {
		key := bucketKey(unit)
		point := models.SeriesPoint{Date: key}
		if b := buckets[key]; b != nil {
			point.Count = b.count
			if b.ratingCount > 0 {
				point.AvgRating = floatPtr(round1(b.ratingSum / float64(b.ratingCount)))
			}
			point.NegShare = ratio(b.negative, b.count)
			point.ReplyRate = ratio(b.replied, b.replyable)
		}
		points = append(points, point)
	}

	return points
}

// ComputeKPIs computes the whole-range headline numbers. Percentages are
// rounded integers; the response rate is clamped to null when malformed
// input pushes it outside [0,100].
func ComputeKPIs(reviews []*models.Review) models.OverviewKPIs {
	kpis := models.OverviewKPIs{ReviewCount: len(reviews)}

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
		}
		if review.Replied() {
			replied++
		}
	}

	if ratingCount > 0 {
		kpis.AvgRating = floatPtr(round1(ratingSum / float64(ratingCount)))
	}
	kpis.NegSharePct = pctInt(negative, len(reviews))
	kpis.ResponseRatePct = pctInt(replied, replyable)
	if kpis.ResponseRatePct != nil && (*kpis.ResponseRatePct < 0 || *kpis.ResponseRatePct > 100) {
		kpis.ResponseRatePct = nil
	}

	return kpis
}

// RatingHistogram buckets ratings into integer stars 1..5, rounding to the
// nearest integer. Out-of-range values are dropped from the histogram only;
// they still count toward other KPIs.
func RatingHistogram(reviews []*models.Review) map[string]int {
	hist := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	for _, review := range reviews {
		if review.Rating == nil {
			continue
		}
		star := int(math.Round(float64(*review.Rating)))
		if star < 1 || star > 5 {
			continue
		}
		hist[strconv.Itoa(star)]++
	}
	return hist
}

package analytics

import (
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"go.uber.org/zap"
)

// slaWindowHours is the reply SLA window.
const slaWindowHours = 24.0

// ComputeQuality derives reply-delay and SLA metrics from matched reply
// timestamps. Replies recorded before their review are bad data: they are
// excluded from the samples and logged, never fatal.
func ComputeQuality(reviews []*models.Review, logger *zap.Logger) (models.QualityRates, models.QualityCounts) {
	var rates models.QualityRates
	var counts models.QualityCounts

	var delaySum float64
	var withinSLA int
	samples := 0

	for _, review := range reviews {
		if !review.Replyable() {
			continue
		}
		counts.Replyable++
		if !review.Replied() {
			continue
		}
		counts.Replied++

		et := review.EffectiveTime()
		rt := review.BestReplyTime()
		if et == nil || rt == nil {
			continue
		}
		delay := rt.Sub(*et).Hours()
		if delay < 0 {
			logger.Debug("negative_reply_delay_discarded",
				zap.String("review_id", review.ID.String()),
				zap.Float64("delay_hours", delay),
			)
			continue
		}
		counts.RepliedWithTime++
		samples++
		delaySum += delay
		if delay <= slaWindowHours {
			withinSLA++
		}
	}

	if samples > 0 {
		rates.AvgReplyDelayHours = floatPtr(round1(delaySum / float64(samples)))
		rates.SLA24h = floatPtr(round2(float64(withinSLA) / float64(samples)))
	}

	return rates, counts
}

package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// driverListSize is the length of each ranked strengths/irritants list.
const driverListSize = 5

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLabel folds a raw tag label into its aggregation key: trimmed,
// lowercased, diacritics stripped. Two raw labels with the same normalized
// form are the same tag.
func NormalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	stripped, _, err := transform.String(stripDiacritics, label)
	if err != nil {
		return label
	}
	return stripped
}

// AggregateTags folds tag links into per-tag stats keyed by normalized
// label. The first-seen trimmed raw label becomes the display label.
func AggregateTags(links []*models.TagLink) map[string]*models.TagStat {
	stats := make(map[string]*models.TagStat)
	for _, link := range links {
		key := NormalizeLabel(link.Label)
		if key == "" {
			continue
		}
		stat := stats[key]
		if stat == nil {
			stat = &models.TagStat{
				Label:   strings.TrimSpace(link.Label),
				TagIDs:  make(map[uuid.UUID]bool),
				Reviews: make(map[uuid.UUID]bool),
			}
			stats[key] = stat
		}
		stat.Count++
		stat.Reviews[link.ReviewID] = true
		if link.TagID != nil {
			stat.TagIDs[*link.TagID] = true
		}
		switch link.Sentiment {
		case models.SentimentPositive:
			stat.Positive++
		case models.SentimentNegative:
			stat.Negative++
		default:
			stat.Neutral++
		}
	}
	return stats
}

// BuildDrivers classifies current-period tags into ranked strengths and
// irritants with deltas against the previous period. Tags that qualify as
// neither stay in the totals but appear in no list.
func BuildDrivers(current, previous map[string]*models.TagStat) (strengths, irritants []models.DriverStat, totals models.DriverTotals) {
	totalTagged := 0
	for _, stat := range current {
		totalTagged += stat.Count
	}
	totals = models.DriverTotals{TaggedCount: totalTagged, UniqueTags: len(current)}

	for key, stat := range current {
		entry := models.DriverStat{
			Label:        stat.Label,
			Count:        stat.Count,
			Positive:     stat.Positive,
			Negative:     stat.Negative,
			Neutral:      stat.Neutral,
			NetSentiment: stat.NetSentiment(),
		}
		if totalTagged > 0 {
			entry.SharePct = floatPtr(round1(float64(stat.Count) / float64(totalTagged) * 100))
		}
		// A delta against a zero previous count would imply a false 0%->N%
		// baseline, so it stays null unless the tag existed before.
		if prev, ok := previous[key]; ok && prev.Count > 0 {
			delta := stat.Count - prev.Count
			entry.Delta = intPtr(delta)
			entry.DeltaPct = floatPtr(round2(float64(delta) / float64(prev.Count)))
		}

		switch {
		case stat.Irritant():
			irritants = append(irritants, entry)
		case stat.Strength():
			strengths = append(strengths, entry)
		}
	}

	sortDrivers(strengths)
	sortDrivers(irritants)
	if len(strengths) > driverListSize {
		strengths = strengths[:driverListSize]
	}
	if len(irritants) > driverListSize {
		irritants = irritants[:driverListSize]
	}

	return strengths, irritants, totals
}

func sortDrivers(list []models.DriverStat) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Label < list[j].Label
	})
}

// SentimentTotals sums the sentiment distribution across links.
func SentimentTotals(links []*models.TagLink) models.SentimentTotals {
	var totals models.SentimentTotals
	for _, link := range links {
		switch link.Sentiment {
		case models.SentimentPositive:
			totals.Positive++
		case models.SentimentNegative:
			totals.Negative++
		default:
			totals.Neutral++
		}
	}
	return totals
}

// TopTopics returns the most mentioned tags for the overview.
func TopTopics(stats map[string]*models.TagStat, n int) []models.TopicCount {
	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(stats))
	for _, stat := range stats {
		entries = append(entries, entry{label: stat.Label, count: stat.Count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	topics := make([]models.TopicCount, len(entries))
	for i, e := range entries {
		topics[i] = models.TopicCount{Label: e.label, Count: e.count}
	}
	return topics
}

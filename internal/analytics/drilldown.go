package analytics

import (
	"sort"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

const (
	drilldownDefaultLimit = 10
	drilldownMaxLimit     = 50
)

// clampLimit forces the page size into [1,50], defaulting to 10.
func clampLimit(limit int) int {
	if limit <= 0 {
		return drilldownDefaultLimit
	}
	if limit > drilldownMaxLimit {
		return drilldownMaxLimit
	}
	return limit
}

// matchTagLinks resolves the review ids matching the requested tag. Manual
// tags match by normalized label; AI tags match by tag-id set.
func matchTagLinks(links []*models.TagLink, source models.TagSource, tag string, tagIDs []uuid.UUID) map[uuid.UUID]bool {
	matched := make(map[uuid.UUID]bool)
	if source == models.TagSourceAI {
		wanted := make(map[uuid.UUID]bool, len(tagIDs))
		for _, id := range tagIDs {
			wanted[id] = true
		}
		for _, link := range links {
			if link.TagID != nil && wanted[*link.TagID] {
				matched[link.ReviewID] = true
			}
		}
		return matched
	}

	key := NormalizeLabel(tag)
	if key == "" {
		// Blank labels are never queryable
		return matched
	}
	for _, link := range links {
		if NormalizeLabel(link.Label) == key {
			matched[link.ReviewID] = true
		}
	}
	return matched
}

// BuildDrilldown intersects the fetched rows with the tag-matched review
// ids, sorts newest-first (rows without an effective time last), and slices
// one page. HasMore reflects the unsliced matching set.
func BuildDrilldown(reviews []*models.Review, matched map[uuid.UUID]bool, offset, limit int) ([]models.DrilldownItem, models.DrilldownPage) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var rows []*models.Review
	for _, review := range reviews {
		if matched[review.ID] {
			rows = append(rows, review)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ti := rows[i].EffectiveTime()
		tj := rows[j].EffectiveTime()
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	total := len(rows)
	page := models.DrilldownPage{
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: offset+limit < total,
	}

	if offset >= total {
		return []models.DrilldownItem{}, page
	}
	end := offset + limit
	if end > total {
		end = total
	}

	items := make([]models.DrilldownItem, 0, end-offset)
	for _, review := range rows[offset:end] {
		items = append(items, models.DrilldownItem{
			ID:         review.ID,
			LocationID: review.LocationID,
			Rating:     review.Rating,
			Comment:    review.Comment,
			Time:       review.EffectiveTime(),
			Replied:    review.Replied(),
		})
	}

	return items, page
}

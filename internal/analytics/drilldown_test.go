package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-5, 10},
		{1, 1},
		{25, 25},
		{50, 50},
		{51, 50},
		{1000, 50},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMatchTagLinks_ManualByLabel(t *testing.T) {
	t.Parallel()

	a := link("Café", models.SentimentPositive)
	b := link("cafe", models.SentimentNegative)
	c := link("service", models.SentimentPositive)

	matched := matchTagLinks([]*models.TagLink{a, b, c}, models.TagSourceManual, "CAFE", nil)

	if len(matched) != 2 || !matched[a.ReviewID] || !matched[b.ReviewID] {
		t.Errorf("matched = %v", matched)
	}
	if matched[c.ReviewID] {
		t.Error("service should not match cafe")
	}
}

func TestMatchTagLinks_BlankLabelMatchesNothing(t *testing.T) {
	t.Parallel()

	links := []*models.TagLink{
		link("", models.SentimentNegative),
		link("   ", models.SentimentPositive),
		link("service", models.SentimentPositive),
	}

	for _, tag := range []string{"", "   ", "\t"} {
		if matched := matchTagLinks(links, models.TagSourceManual, tag, nil); len(matched) != 0 {
			t.Errorf("matchTagLinks(%q) = %v, want no matches", tag, matched)
		}
	}
}

func TestMatchTagLinks_AIByTagID(t *testing.T) {
	t.Parallel()

	wanted := uuid.New()
	other := uuid.New()

	a := link("anything", models.SentimentPositive)
	a.TagID = &wanted
	b := link("anything", models.SentimentPositive)
	b.TagID = &other
	c := link("anything", models.SentimentPositive) // no tag id

	matched := matchTagLinks([]*models.TagLink{a, b, c}, models.TagSourceAI, "anything", []uuid.UUID{wanted})

	if len(matched) != 1 || !matched[a.ReviewID] {
		t.Errorf("matched = %v", matched)
	}
}

func TestBuildDrilldown_SortsAndPaginates(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var reviews []*models.Review
	matched := make(map[uuid.UUID]bool)
	for i := 0; i < 5; i++ {
		r := reviewAt(base.AddDate(0, 0, i), 4)
		reviews = append(reviews, r)
		matched[r.ID] = true
	}
	noTime := &models.Review{ID: uuid.New()}
	reviews = append(reviews, noTime)
	matched[noTime.ID] = true

	unmatched := reviewAt(base, 1)
	reviews = append(reviews, unmatched)

	items, page := BuildDrilldown(reviews, matched, 0, 3)

	if page.Total != 6 {
		t.Errorf("Total = %d, want 6", page.Total)
	}
	if !page.HasMore {
		t.Error("Expected HasMore")
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	// Newest first
	if items[0].Time == nil || !items[0].Time.Equal(base.AddDate(0, 0, 4)) {
		t.Errorf("items[0].Time = %v", items[0].Time)
	}

	// Last page holds the two oldest plus the timeless row
	items, page = BuildDrilldown(reviews, matched, 3, 3)
	if page.HasMore {
		t.Error("Expected no more pages")
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if items[2].Time != nil {
		t.Errorf("Timeless row should sort last, got %v", items[2].Time)
	}
}

func TestBuildDrilldown_OffsetPastEnd(t *testing.T) {
	t.Parallel()

	r := reviewAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 3)
	matched := map[uuid.UUID]bool{r.ID: true}

	items, page := BuildDrilldown([]*models.Review{r}, matched, 10, 10)

	if len(items) != 0 {
		t.Errorf("Expected empty page, got %d items", len(items))
	}
	if page.Total != 1 || page.HasMore {
		t.Errorf("page = %+v", page)
	}
}

func TestBuildDrilldown_NegativeOffset(t *testing.T) {
	t.Parallel()

	r := reviewAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 3)
	matched := map[uuid.UUID]bool{r.ID: true}

	items, page := BuildDrilldown([]*models.Review{r}, matched, -3, 10)
	if page.Offset != 0 || len(items) != 1 {
		t.Errorf("offset = %d, items = %d", page.Offset, len(items))
	}
}

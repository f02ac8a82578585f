package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

const (
	// minInsightItems and maxInsightItems bound a valid AI insight list.
	minInsightItems = 4
	maxInsightItems = 7
)

// ParseResult is the outcome of validating one AI response: either a valid
// insight list or an invalid marker with the reason, driving the repair step
// explicitly instead of nested error handling.
type ParseResult struct {
	Insights []models.Insight
	Invalid  bool
	Reason   string
}

func invalid(format string, args ...any) ParseResult {
	return ParseResult{Invalid: true, Reason: fmt.Sprintf(format, args...)}
}

// ParseInsights parses and shape-validates a raw model response. The model
// is told to reply with a bare JSON array; stray prose around the array is
// tolerated by slicing to the outermost brackets before parsing.
func ParseInsights(content string) ParseResult {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return invalid("empty response")
	}
	if raw[0] != '[' {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end == -1 || end <= start {
			return invalid("no JSON array found in response")
		}
		raw = raw[start : end+1]
	}

	var items []struct {
		Title      string   `json:"title"`
		Detail     string   `json:"detail"`
		Severity   string   `json:"severity"`
		MetricKeys []string `json:"metric_keys"`
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return invalid("response is not a JSON array: %v", err)
	}

	if len(items) < minInsightItems || len(items) > maxInsightItems {
		return invalid("expected %d-%d items, got %d", minInsightItems, maxInsightItems, len(items))
	}

	insights := make([]models.Insight, 0, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return invalid("item %d has an empty title", i)
		}
		if strings.TrimSpace(item.Detail) == "" {
			return invalid("item %d has an empty detail", i)
		}
		severity := models.InsightSeverity(item.Severity)
		if !models.ValidSeverity(severity) {
			return invalid("item %d has severity %q outside good/warn/bad", i, item.Severity)
		}
		for _, key := range item.MetricKeys {
			if !models.ValidMetricKey(key) {
				return invalid("item %d references unknown metric key %q", i, key)
			}
		}
		insights = append(insights, models.Insight{
			Title:      strings.TrimSpace(item.Title),
			Detail:     strings.TrimSpace(item.Detail),
			Severity:   severity,
			MetricKeys: item.MetricKeys,
		})
	}

	return ParseResult{Insights: insights}
}

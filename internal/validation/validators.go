package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("granularity", validateGranularity); err != nil {
		panic(fmt.Sprintf("failed to register granularity validator: %v", err))
	}
	if err := Validate.RegisterValidation("insight_mode", validateInsightMode); err != nil {
		panic(fmt.Sprintf("failed to register insight_mode validator: %v", err))
	}
	if err := Validate.RegisterValidation("tag_source", validateTagSource); err != nil {
		panic(fmt.Sprintf("failed to register tag_source validator: %v", err))
	}
}

// validateGranularity validates that a string is a valid Granularity enum value
func validateGranularity(fl validator.FieldLevel) bool {
	switch models.Granularity(fl.Field().String()) {
	case models.GranularityDay, models.GranularityWeek:
		return true
	default:
		return false
	}
}

// validateInsightMode validates that a string is a valid InsightMode enum value
func validateInsightMode(fl validator.FieldLevel) bool {
	switch models.InsightMode(fl.Field().String()) {
	case models.InsightModeAuto, models.InsightModeAI, models.InsightModeBasic:
		return true
	default:
		return false
	}
}

// validateTagSource validates that a string is a valid TagSource enum value
func validateTagSource(fl validator.FieldLevel) bool {
	switch models.TagSource(fl.Field().String()) {
	case models.TagSourceAI, models.TagSourceManual:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

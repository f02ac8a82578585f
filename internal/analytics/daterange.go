package analytics

import (
	"time"

	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

// Supported presets. Unknown presets resolve to the default.
const (
	PresetLast7Days  = "last_7_days"
	PresetLast30Days = "last_30_days"
	PresetLast90Days = "last_90_days"
	PresetThisMonth  = "this_month"
	PresetLastMonth  = "last_month"
	PresetThisYear   = "this_year"
	PresetAllTime    = "all_time"
	PresetCustom     = "custom"

	defaultPreset = PresetLast30Days
)

// allTimeFloor is the bounded sentinel used for all_time queries. The
// reported window still carries a null lower bound.
var allTimeFloor = time.Unix(0, 0).UTC()

// ResolveRange maps a preset or explicit from/to plus timezone into a
// concrete UTC window with inclusive bounds. now anchors the relative
// presets; callers pass time.Now(), tests pass a fixture.
func ResolveRange(preset, fromStr, toStr, tzName string, now time.Time) models.DateRange {
	loc := resolveTZ(tzName)
	localNow := now.In(loc)

	if fromStr != "" && toStr != "" {
		from, okFrom := parseBound(fromStr, loc, false)
		to, okTo := parseBound(toStr, loc, true)
		if okFrom && okTo && !to.Before(from) {
			return models.DateRange{
				From:   from.UTC(),
				To:     to.UTC(),
				Preset: PresetCustom,
				TZ:     loc.String(),
			}
		}
	}

	if preset == "" {
		preset = defaultPreset
	}

	rng := models.DateRange{Preset: preset, TZ: loc.String()}
	switch preset {
	case PresetLast7Days:
		rng.From = startOfDay(localNow.AddDate(0, 0, -6))
		rng.To = endOfDay(localNow)
	case PresetLast90Days:
		rng.From = startOfDay(localNow.AddDate(0, 0, -89))
		rng.To = endOfDay(localNow)
	case PresetThisMonth:
		rng.From = time.Date(localNow.Year(), localNow.Month(), 1, 0, 0, 0, 0, loc)
		rng.To = endOfDay(localNow)
	case PresetLastMonth:
		firstOfThis := time.Date(localNow.Year(), localNow.Month(), 1, 0, 0, 0, 0, loc)
		rng.From = firstOfThis.AddDate(0, -1, 0)
		rng.To = firstOfThis.Add(-time.Second)
	case PresetThisYear:
		rng.From = time.Date(localNow.Year(), 1, 1, 0, 0, 0, 0, loc)
		rng.To = endOfDay(localNow)
	case PresetAllTime:
		rng.From = allTimeFloor
		rng.To = endOfDay(localNow)
		rng.AllTime = true
	default:
		rng.Preset = defaultPreset
		fallthrough
	case PresetLast30Days:
		rng.From = startOfDay(localNow.AddDate(0, 0, -29))
		rng.To = endOfDay(localNow)
	}

	rng.From = rng.From.UTC()
	rng.To = rng.To.UTC()
	return rng
}

func resolveTZ(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseBound accepts RFC3339 instants or bare dates. Bare dates expand to the
// start (lower bound) or end (upper bound) of that day in the query timezone.
func parseBound(s string, loc *time.Location, upper bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		if upper {
			return endOfDay(d), true
		}
		return d, true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// inclusiveDays returns the number of calendar days covered by the window,
// counting both endpoints.
func inclusiveDays(rng models.DateRange) int {
	from := dayFloorUTC(rng.From)
	to := dayFloorUTC(rng.To)
	return int(to.Sub(from).Hours()/24) + 1
}

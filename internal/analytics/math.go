package analytics

import "math"

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// ratio returns numerator/denominator, or nil when the denominator is zero.
// Every rate in the engine goes through this so responses never carry NaN or
// infinity.
func ratio(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	return floatPtr(float64(num) / float64(den))
}

// pctInt returns the ratio as a rounded integer percentage, or nil when the
// denominator is zero.
func pctInt(num, den int) *int {
	r := ratio(num, den)
	if r == nil {
		return nil
	}
	return intPtr(int(math.Round(*r * 100)))
}

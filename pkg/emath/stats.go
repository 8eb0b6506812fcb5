package emath

import(
	"errors"
	"math"
	"sort"
)

// Some functions that only operate on basic types, that are useful

var ErrEmpty = errors.New("no values")

// Median returns the middle value of vals, or the mean of the two
// middle values for an even count. The input is not reordered.
func Median(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return math.NaN(), ErrEmpty
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted) % 2 != 0 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0, nil
}

// MapRange linearly maps v from [inMin,inMax] onto [outMin,outMax]. It
// does not clamp, and inMin==inMax divides by zero.
func MapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v - inMin) * (outMax - outMin) / (inMax - inMin) + outMin
}

func Clamp(v, min, max float64) float64 {
	if v < min { return min }
	if v > max { return max }
	return v
}

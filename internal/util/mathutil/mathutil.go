package mathutil

import "math"

// ClampInt clamps v into the inclusive [min, max] range.
// If min > max, the bounds are swapped.
func ClampInt(v, min, max int) int {
	if min > max {
		min, max = max, min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampFloat clamps v into the inclusive [min, max] range.
func ClampFloat(v, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RoundInt rounds v half away from zero and returns it as an int.
func RoundInt(v float64) int {
	return int(math.Round(v))
}

// MeanFloat returns the arithmetic mean of vals. Returns 0 if empty.
func MeanFloat(vals ...float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Package numeric holds the small pure helpers shared by the parameter store,
// the steppers and the renderers.
package numeric

import (
	"fmt"
	"math"
	"strconv"
)

// Epsilon is the threshold below which a denominator is treated as zero.
const Epsilon = 1e-9

// Clamp limits v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampAbs limits v to [-limit, limit].
func ClampAbs(v, limit float64) float64 {
	return Clamp(v, -math.Abs(limit), math.Abs(limit))
}

// Floor returns v, or floor when |v| is smaller than floor. The sign of v is kept.
func Floor(v, floor float64) float64 {
	if math.Abs(v) >= floor {
		return v
	}
	if v < 0 {
		return -floor
	}
	return floor
}

// SafeDiv returns a/b, or fallback when b is (near) zero or the quotient is not finite.
func SafeDiv(a, b, fallback float64) float64 {
	if math.Abs(b) < Epsilon {
		return fallback
	}
	q := a / b
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return fallback
	}
	return q
}

// Finite replaces NaN and ±Inf with fallback.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func Rad(deg float64) float64 { return deg * math.Pi / 180 }
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Snap rounds v to the nearest multiple of step measured from origin.
// A non-positive step leaves v unchanged. The result is rounded to 1e-9 so
// that decimal steps land on the value a user would type.
func Snap(v, origin, step float64) float64 {
	if step <= 0 {
		return v
	}
	n := math.Round((v - origin) / step)
	return math.Round((origin+n*step)*1e9) / 1e9
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Format renders v with the given number of decimals and an optional unit,
// trimming "-0" artefacts.
func Format(v float64, decimals int, unit string) string {
	v = Finite(v, 0)
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if s[0] == '-' {
		if z, err := strconv.ParseFloat(s, 64); err == nil && z == 0 {
			s = s[1:]
		}
	}
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// Compact formats large or tiny magnitudes in scientific notation and
// everything else with three significant decimals.
func Compact(v float64, unit string) string {
	v = Finite(v, 0)
	a := math.Abs(v)
	if a != 0 && (a >= 1e5 || a < 1e-3) {
		s := fmt.Sprintf("%.3g", v)
		if unit == "" {
			return s
		}
		return s + " " + unit
	}
	return Format(v, 3, unit)
}

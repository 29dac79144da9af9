package analysis

import "gonum.org/v1/gonum/stat"

// Crossings returns the interpolated times at which values rises through
// level.
func Crossings(times, values []float64, level float64) []float64 {
	n := min(len(times), len(values))
	var out []float64
	for i := 1; i < n; i++ {
		a, b := values[i-1]-level, values[i]-level
		if a < 0 && b >= 0 {
			frac := a / (a - b)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period estimates the oscillation period as the mean interval between
// upward crossings of level. It needs at least two crossings.
func Period(times, values []float64, level float64) (float64, bool) {
	cs := Crossings(times, values, level)
	if len(cs) < 2 {
		return 0, false
	}
	gaps := make([]float64, len(cs)-1)
	for i := range gaps {
		gaps[i] = cs[i+1] - cs[i]
	}
	return stat.Mean(gaps, nil), true
}

package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physlab/internal/sim"
)

// Summary describes one series of a run.
type Summary struct {
	Name   string
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Final  float64
}

// Summarize computes a Summary for a series. An empty series gives zeros.
func Summarize(name string, xs []float64) Summary {
	s := Summary{Name: name}
	if len(xs) == 0 {
		return s
	}
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	s.Final = xs[len(xs)-1]
	return s
}

// SummarizeResult summarizes every derived quantity of a run, in readout
// order.
func SummarizeResult(res *sim.Result) []Summary {
	names := res.Quantities()
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		out = append(out, Summarize(name, res.Series(name)))
	}
	return out
}

// Correlation is the Pearson correlation of two equally long series, or 0
// when either is constant.
func Correlation(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}
	c := stat.Correlation(xs, ys, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

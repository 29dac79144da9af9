package analysis

import (
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/sim"
)

// Report characterises one derived quantity of a run.
type Report struct {
	metrics.Summary
	SampleRate float64 // Hz
	Dominant   float64 // Hz, 0 without a clear oscillation
	Period     float64 // s, from crossings of the mean
	Crossings  int
}

// SampleRate infers the rate of a recorded run from its first and last
// sample times.
func SampleRate(res *sim.Result) float64 {
	n := len(res.Samples)
	if n < 2 {
		return 0
	}
	span := res.Samples[n-1].Time - res.Samples[0].Time
	if span <= 0 {
		return 0
	}
	return float64(n-1) / span
}

// Analyze summarises quantity over res and looks for periodic behaviour.
func Analyze(res *sim.Result, quantity string) Report {
	series := res.Series(quantity)
	r := Report{Summary: metrics.Summarize(quantity, series), SampleRate: SampleRate(res)}
	r.Dominant = DominantFrequency(series, r.SampleRate)

	times := res.Times()
	r.Crossings = len(Crossings(times, series, r.Mean))
	if p, ok := Period(times, series, r.Mean); ok {
		r.Period = p
	}
	return r
}

// AnalyzeAll reports every derived quantity in readout order.
func AnalyzeAll(res *sim.Result) []Report {
	names := res.Quantities()
	out := make([]Report, 0, len(names))
	for _, name := range names {
		out = append(out, Analyze(res, name))
	}
	return out
}

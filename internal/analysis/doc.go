// Package analysis inspects recorded runs.
//
//   - [Spectrum], [DominantFrequency], [TopBins]: amplitude spectra via gonum's FFT
//   - [Crossings], [Period]: oscillation timing from level crossings
//   - [PhasePortrait], [QuantityPortrait]: two-variable trajectories with an ASCII plot
//   - [Analyze]: a per-quantity report combining the above
//
// # Measuring a period
//
//	res, _ := sim.Run(ctx, physics.NewPendulum(nil, map[string]float64{"angle": 60}), cfg)
//	r := analysis.Analyze(res, "angle")
//	fmt.Printf("T = %.3f s\n", r.Period)
package analysis

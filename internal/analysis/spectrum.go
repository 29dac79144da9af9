package analysis

import (
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Bin is one line of a one-sided amplitude spectrum.
type Bin struct {
	Frequency float64 // Hz
	Amplitude float64
}

// Spectrum returns the one-sided amplitude spectrum of a uniformly sampled
// series with its mean removed. Series shorter than 4 samples give nil.
func Spectrum(series []float64, sampleRate float64) []Bin {
	n := len(series)
	if n < 4 || sampleRate <= 0 {
		return nil
	}
	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)
	bins := make([]Bin, len(coeffs))
	for i, c := range coeffs {
		amp := 2 * cmplx.Abs(c) / float64(n)
		if i == 0 || (n%2 == 0 && i == n/2) {
			amp /= 2
		}
		bins[i] = Bin{Frequency: fft.Freq(i) * sampleRate, Amplitude: amp}
	}
	return bins
}

// DominantFrequency is the frequency of the strongest non-DC bin, or 0.
func DominantFrequency(series []float64, sampleRate float64) float64 {
	bins := Spectrum(series, sampleRate)
	best, f := 0.0, 0.0
	for _, b := range bins[min(1, len(bins)):] {
		if b.Amplitude > best {
			best, f = b.Amplitude, b.Frequency
		}
	}
	return f
}

// TopBins returns the k strongest non-DC bins, strongest first.
func TopBins(series []float64, sampleRate float64, k int) []Bin {
	bins := Spectrum(series, sampleRate)
	if len(bins) < 2 {
		return nil
	}
	bins = append([]Bin(nil), bins[1:]...)
	sort.SliceStable(bins, func(i, j int) bool { return bins[i].Amplitude > bins[j].Amplitude })
	if k < len(bins) {
		bins = bins[:k]
	}
	return bins
}

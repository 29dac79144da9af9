package physics

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	interferenceW = 800.0
	interferenceH = 450.0
	barrierX      = 150.0
	screenX       = 620.0
	// screenHalf is the physical half-height of the screen in metres.
	screenHalf = 0.01
	// histDecay is applied to every bin once per frame.
	histDecay = 0.99
	// maxAttempts bounds rejection sampling per hit.
	maxAttempts = 64
	maxDots     = 400
)

// InterferenceState keeps a per-pixel hit histogram along the screen. The
// generator state is stored by value so Step stays deterministic.
type InterferenceState struct {
	Hist  []float64
	Dots  []scene.Point
	Hits  int
	Carry float64 // fractional hits owed from previous steps
	RNG   rand.PCG
	T     float64
}

type InterferenceParams struct {
	Wavelength float64 // m
	SlitWidth  float64 // m
	Separation float64 // m
	Distance   float64 // m, slits to screen
	Rate       float64 // hits per second
	Seed       uint64
}

// Interference accumulates photon hits behind a double slit.
type Interference struct{}

func NewInterference(values map[string]float64) *dynamo.Instance[InterferenceState, InterferenceParams] {
	return dynamo.NewInstance[InterferenceState, InterferenceParams](Interference{},
		dynamo.WithValues[InterferenceState, InterferenceParams](values))
}

func (Interference) Kind() dynamo.Kind        { return dynamo.KindInterference }
func (Interference) Size() (float64, float64) { return interferenceW, interferenceH }
func (Interference) Labels() []string         { return []string{"hits"} }
func (Interference) Vector(s InterferenceState) dynamo.State {
	return dynamo.State{float64(s.Hits)}
}

func (Interference) Specs() []params.Spec {
	return []params.Spec{
		spec("wavelength", "Wavelength", "nm", 380, 750, 5, 550),
		spec("slit_width", "Slit width", "µm", 10, 200, 1, 40),
		spec("separation", "Slit separation", "µm", 50, 1000, 10, 250),
		spec("distance", "Screen distance", "m", 0.5, 5, 0.1, 1),
		live(spec("rate", "Photon rate", "1/s", 10, 2000, 10, 300)),
		spec("seed", "Seed", "", 0, 9999, 1, 1),
	}
}

func (Interference) Decode(s *params.Store) InterferenceParams {
	return InterferenceParams{
		Wavelength: s.Get("wavelength") * 1e-9,
		SlitWidth:  s.Get("slit_width") * 1e-6,
		Separation: s.Get("separation") * 1e-6,
		Distance:   s.Get("distance"),
		Rate:       s.Get("rate"),
		Seed:       uint64(s.Int("seed")),
	}
}

func (Interference) Initial(p InterferenceParams) InterferenceState {
	return InterferenceState{
		Hist: make([]float64, int(interferenceH)),
		RNG:  *rand.NewPCG(p.Seed, p.Seed^0x853c49e6748fea9b),
	}
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	return math.Sin(x) / x
}

// Intensity is 4·sinc²(α)·cos²(β) with α = π·a·sinθ/λ, β = π·d·sinθ/λ and
// sinθ ≈ y/L. The peak value is 4.
func Intensity(y float64, p InterferenceParams) float64 {
	if p.Wavelength <= 0 || p.Distance <= 0 {
		return 0
	}
	sinT := y / p.Distance
	alpha := math.Pi * p.SlitWidth * sinT / p.Wavelength
	beta := math.Pi * p.Separation * sinT / p.Wavelength
	s, c := sinc(alpha), math.Cos(beta)
	return 4 * s * s * c * c
}

// screenY maps a physical screen position to a canvas row.
func screenY(y float64) float64 {
	return interferenceH / 2 * (1 - y/screenHalf)
}

func (Interference) Step(s InterferenceState, p InterferenceParams, dt float64) (InterferenceState, dynamo.Outcome) {
	next := InterferenceState{
		Hist: make([]float64, len(s.Hist)),
		Hits: s.Hits,
		RNG:  s.RNG,
		T:    s.T + dt,
	}
	decay := math.Pow(histDecay, dt*refFPS)
	for i, v := range s.Hist {
		next.Hist[i] = v * decay
	}

	rng := rand.New(&next.RNG)
	want := p.Rate*dt + s.Carry
	n := int(want)
	next.Carry = want - float64(n)

	dots := append([]scene.Point(nil), s.Dots...)
	for i := 0; i < n; i++ {
		y, ok := sampleHit(rng, p)
		if !ok {
			continue
		}
		row := screenY(y)
		if bin := int(row); bin >= 0 && bin < len(next.Hist) {
			next.Hist[bin]++
		}
		dots = append(dots, scene.Pt(screenX-30*rng.Float64(), row))
		next.Hits++
	}
	if len(dots) > maxDots {
		dots = dots[len(dots)-maxDots:]
	}
	next.Dots = dots
	return next, dynamo.Outcome{}
}

// sampleHit draws a screen position by rejection against I/4.
func sampleHit(rng *rand.Rand, p InterferenceParams) (float64, bool) {
	for i := 0; i < maxAttempts; i++ {
		y := (2*rng.Float64() - 1) * screenHalf
		if rng.Float64()*4 < Intensity(y, p) {
			return y, true
		}
	}
	return 0, false
}

// FringeSpacing is λL/d.
func FringeSpacing(p InterferenceParams) float64 {
	return numeric.SafeDiv(p.Wavelength*p.Distance, p.Separation, 0)
}

func (Interference) Derive(s InterferenceState, p InterferenceParams) dynamo.Derived {
	peak := 0.0
	for _, v := range s.Hist {
		peak = math.Max(peak, v)
	}

	var d dynamo.Derived
	d.Add("spacing", "Fringe spacing", "mm", FringeSpacing(p)*1e3)
	d.Add("envelope", "Central envelope", "mm", 2*numeric.SafeDiv(p.Wavelength*p.Distance, p.SlitWidth, 0)*1e3)
	d.Add("hits", "Hits", "", float64(s.Hits))
	d.Add("peak", "Peak bin", "", peak)
	return d
}

func (Interference) Draw(f *scene.Frame, s InterferenceState, p InterferenceParams, d dynamo.Derived, _ []scene.Point) {
	wall := scene.Style{Stroke: scene.Foreground, Width: 4}
	mid := interferenceH / 2
	// Slits are drawn at a fixed exaggerated scale.
	gap := numeric.Clamp(p.Separation*1e5, 10, 100)
	open := numeric.Clamp(p.SlitWidth*1e5, 2, 20)
	f.Line(scene.Pt(barrierX, 20), scene.Pt(barrierX, mid-gap/2-open/2), wall)
	f.Line(scene.Pt(barrierX, mid-gap/2+open/2), scene.Pt(barrierX, mid+gap/2-open/2), wall)
	f.Line(scene.Pt(barrierX, mid+gap/2+open/2), scene.Pt(barrierX, interferenceH-20), wall)
	f.Line(scene.Pt(screenX, 20), scene.Pt(screenX, interferenceH-20), groundStyle)

	color := wavelengthColor(p.Wavelength)
	for _, dot := range s.Dots {
		f.Circle(dot, 1.5, scene.Style{Fill: color})
	}

	peak := d.Value("peak")
	const barMax = interferenceW - screenX - 30
	bar := scene.Style{Stroke: color, Width: 1}
	for i, v := range s.Hist {
		if v < 0.05 {
			continue
		}
		y := float64(i) + 0.5
		f.Line(scene.Pt(screenX+4, y), scene.Pt(screenX+4+barMax*v/math.Max(peak, 1), y), bar)
	}

	const samples = 150
	curve := make([]scene.Point, 0, samples+1)
	for i := 0; i <= samples; i++ {
		y := screenHalf * (1 - 2*float64(i)/samples)
		curve = append(curve, scene.Pt(screenX+4+barMax*Intensity(y, p)/4, screenY(y)))
	}
	f.Path(curve, false, guideStyle)
	readouts(f, d)
}

// wavelengthColor approximates the visible colour of λ.
func wavelengthColor(lambda float64) scene.Color {
	nm := lambda * 1e9
	switch {
	case nm < 450:
		return "#8b5cf6"
	case nm < 495:
		return "#3b82f6"
	case nm < 570:
		return "#22c55e"
	case nm < 590:
		return "#eab308"
	case nm < 620:
		return "#f97316"
	}
	return "#ef4444"
}

package physics

import (
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	waveW       = 800.0
	waveH       = 450.0
	waveSpan    = 20.0 // m shown across the canvas
	waveSamples = 200
	waveBand    = 40.0 // px per unit amplitude
)

type WaveState struct {
	T float64
}

// Component is one travelling sinusoid A·sin(kx ∓ ωt).
type Component struct {
	Amplitude  float64
	Wavelength float64
	Frequency  float64
}

func (c Component) k() float64 { return numeric.SafeDiv(2*math.Pi, c.Wavelength, 0) }
func (c Component) w() float64 { return 2 * math.Pi * c.Frequency }

type WaveParams struct {
	A, B Component
	// Counter sends B the opposite way; equal components then form a standing wave.
	Counter bool
}

// Wave superposes two sinusoids along a string.
type Wave struct{}

func NewWave(values map[string]float64) *dynamo.Instance[WaveState, WaveParams] {
	return dynamo.NewInstance[WaveState, WaveParams](Wave{},
		dynamo.WithValues[WaveState, WaveParams](values))
}

func (Wave) Kind() dynamo.Kind               { return dynamo.KindWave }
func (Wave) Size() (float64, float64)        { return waveW, waveH }
func (Wave) Labels() []string                { return []string{"t"} }
func (Wave) Vector(s WaveState) dynamo.State { return dynamo.State{s.T} }

func (Wave) Specs() []params.Spec {
	return []params.Spec{
		live(spec("a1", "Amplitude 1", "m", 0, 2, 0.05, 1)),
		live(spec("l1", "Wavelength 1", "m", 0.5, 10, 0.1, 4)),
		live(spec("f1", "Frequency 1", "Hz", 0.1, 5, 0.05, 1)),
		live(spec("a2", "Amplitude 2", "m", 0, 2, 0.05, 1)),
		live(spec("l2", "Wavelength 2", "m", 0.5, 10, 0.1, 4.4)),
		live(spec("f2", "Frequency 2", "Hz", 0.1, 5, 0.05, 1.1)),
		live(spec("counter", "Counter-propagating", "", 0, 1, 1, 0)),
	}
}

func (Wave) Decode(s *params.Store) WaveParams {
	return WaveParams{
		A:       Component{Amplitude: s.Get("a1"), Wavelength: s.Get("l1"), Frequency: s.Get("f1")},
		B:       Component{Amplitude: s.Get("a2"), Wavelength: s.Get("l2"), Frequency: s.Get("f2")},
		Counter: s.Get("counter") >= 0.5,
	}
}

func (Wave) Initial(WaveParams) WaveState { return WaveState{} }

func (Wave) Step(s WaveState, _ WaveParams, dt float64) (WaveState, dynamo.Outcome) {
	return WaveState{T: s.T + dt}, dynamo.Outcome{}
}

// Superpose returns both displacements and their sum at x, t.
func Superpose(p WaveParams, x, t float64) (y1, y2, sum float64) {
	y1 = p.A.Amplitude * math.Sin(p.A.k()*x-p.A.w()*t)
	dir := -1.0
	if p.Counter {
		dir = 1
	}
	y2 = p.B.Amplitude * math.Sin(p.B.k()*x+dir*p.B.w()*t)
	return y1, y2, y1 + y2
}

func (Wave) Derive(s WaveState, p WaveParams) dynamo.Derived {
	peak := 0.0
	for i := 0; i <= waveSamples; i++ {
		_, _, y := Superpose(p, waveSpan*float64(i)/waveSamples, s.T)
		peak = math.Max(peak, math.Abs(y))
	}

	var d dynamo.Derived
	d.Add("speed1", "Wave speed 1", "m/s", p.A.Wavelength*p.A.Frequency)
	d.Add("speed2", "Wave speed 2", "m/s", p.B.Wavelength*p.B.Frequency)
	d.Add("beat", "Beat frequency", "Hz", math.Abs(p.A.Frequency-p.B.Frequency))
	d.Add("peak", "Peak displacement", "m", peak)
	d.Add("max", "Max possible", "m", p.A.Amplitude+p.B.Amplitude)
	return d
}

func (Wave) Draw(f *scene.Frame, s WaveState, p WaveParams, d dynamo.Derived, _ []scene.Point) {
	rows := [3]float64{140, 250, 370}
	paths := [3][]scene.Point{}
	for i := 0; i <= waveSamples; i++ {
		x := waveSpan * float64(i) / waveSamples
		y1, y2, sum := Superpose(p, x, s.T)
		px := 20 + x*(waveW-40)/waveSpan
		paths[0] = append(paths[0], scene.Pt(px, rows[0]-y1*waveBand/2))
		paths[1] = append(paths[1], scene.Pt(px, rows[1]-y2*waveBand/2))
		paths[2] = append(paths[2], scene.Pt(px, rows[2]-sum*waveBand/2))
	}
	styles := [3]scene.Style{accentStyle, warmStyle, {Stroke: scene.Success, Width: 3}}
	for i := range rows {
		f.Line(scene.Pt(20, rows[i]), scene.Pt(waveW-20, rows[i]), guideStyle)
		f.Path(paths[i], false, styles[i])
	}
	f.Text(scene.Pt(waveW-120, rows[2]-50), "Sum", 12, labelStyle)
	readouts(f, d)
}

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
	fluidW        = 800.0
	fluidH        = 400.0
	fluidJunction = fluidW / 2
	fluidAxis     = fluidH / 2
	// maxCrossings bounds segment changes per particle per step.
	maxCrossings = 8
)

// Tracer is a fluid particle: X along the pipe, Offset from the axis in px.
type Tracer struct {
	X, Offset float64
}

type FluidState struct {
	Tracers []Tracer
	T       float64
}

// Diameters are drawn 1 px per cm, speeds 1 px per cm/s.
type FluidParams struct {
	D1, D2  float64 // cm
	V1      float64 // cm/s
	Density float64 // kg/m³
	Count   int
	Seed    uint64
}

// Fluid transports tracers through a pipe narrowing from D1 to D2 at its
// midpoint, obeying A1·v1 = A2·v2.
type Fluid struct{}

func NewFluid(values map[string]float64) *dynamo.Instance[FluidState, FluidParams] {
	return dynamo.NewInstance[FluidState, FluidParams](Fluid{},
		dynamo.WithValues[FluidState, FluidParams](values))
}

func (Fluid) Kind() dynamo.Kind                { return dynamo.KindFluid }
func (Fluid) Size() (float64, float64)         { return fluidW, fluidH }
func (Fluid) Labels() []string                 { return nil }
func (Fluid) Vector(s FluidState) dynamo.State { return dynamo.State{s.T} }

func (Fluid) Specs() []params.Spec {
	return []params.Spec{
		live(spec("d1", "Wide diameter", "cm", 10, 150, 1, 80)),
		live(spec("d2", "Narrow diameter", "cm", 10, 150, 1, 40)),
		live(spec("v1", "Inflow speed", "cm/s", 5, 200, 1, 50)),
		live(spec("density", "Density", "kg/m³", 500, 13600, 100, 1000)),
		spec("count", "Tracers", "", 10, 200, 1, 60),
		spec("seed", "Seed", "", 0, 9999, 1, 1),
	}
}

func (Fluid) Decode(s *params.Store) FluidParams {
	return FluidParams{
		D1:      s.Get("d1"),
		D2:      s.Get("d2"),
		V1:      s.Get("v1"),
		Density: s.Get("density"),
		Count:   s.Int("count"),
		Seed:    uint64(s.Int("seed")),
	}
}

// PipeArea is π(d/2)².
func PipeArea(d float64) float64 { return math.Pi * (d / 2) * (d / 2) }

// ContinuitySpeed returns v2 = v1·(d1/d2)², or 0 for a closed outlet.
func ContinuitySpeed(d1, d2, v1 float64) float64 {
	if d2 <= 0 {
		return 0
	}
	r := d1 / d2
	return v1 * r * r
}

func (Fluid) Initial(p FluidParams) FluidState {
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0xda942042e4dd58b5))
	tracers := make([]Tracer, p.Count)
	for i := range tracers {
		x := rng.Float64() * fluidW
		d := p.D1
		if x >= fluidJunction {
			d = p.D2
		}
		tracers[i] = Tracer{X: x, Offset: (rng.Float64() - 0.5) * 0.9 * d}
	}
	return FluidState{Tracers: tracers}
}

// Step moves each tracer at its segment speed. Crossing into the narrow
// segment scales the offset by d2/d1; wrapping back to the inlet undoes it.
func (Fluid) Step(s FluidState, p FluidParams, dt float64) (FluidState, dynamo.Outcome) {
	v2 := ContinuitySpeed(p.D1, p.D2, p.V1)
	next := FluidState{Tracers: make([]Tracer, len(s.Tracers)), T: s.T + dt}
	for i, tr := range s.Tracers {
		remaining := dt
		for n := 0; n < maxCrossings && remaining > 0; n++ {
			if tr.X < fluidJunction {
				need := numeric.SafeDiv(fluidJunction-tr.X, p.V1, math.Inf(1))
				if need > remaining {
					tr.X += p.V1 * remaining
					break
				}
				tr.X = fluidJunction
				tr.Offset *= p.D2 / p.D1
				remaining -= need
				continue
			}
			need := numeric.SafeDiv(fluidW-tr.X, v2, math.Inf(1))
			if need > remaining {
				tr.X += v2 * remaining
				break
			}
			tr.X = 0
			tr.Offset *= p.D1 / p.D2
			remaining -= need
		}
		next.Tracers[i] = tr
	}
	return next, dynamo.Outcome{}
}

func (Fluid) Derive(s FluidState, p FluidParams) dynamo.Derived {
	v2 := ContinuitySpeed(p.D1, p.D2, p.V1)
	a1 := PipeArea(p.D1)
	// ½ρ(v2² - v1²), speeds converted to m/s.
	dp := 0.5 * p.Density * ((v2/100)*(v2/100) - (p.V1/100)*(p.V1/100))

	var d dynamo.Derived
	d.Add("a1", "Wide area", "cm²", a1)
	d.Add("a2", "Narrow area", "cm²", PipeArea(p.D2))
	d.Add("v1", "Wide speed", "cm/s", p.V1)
	d.Add("v2", "Narrow speed", "cm/s", v2)
	d.Add("flow", "Flow rate", "cm³/s", a1*p.V1)
	d.Add("pressure_drop", "Pressure drop", "Pa", dp)
	return d
}

func (Fluid) Draw(f *scene.Frame, s FluidState, p FluidParams, d dynamo.Derived, _ []scene.Point) {
	wall := scene.Style{Stroke: scene.Foreground, Width: 3}
	h1, h2 := p.D1/2, p.D2/2
	const taper = 20.0
	for _, sign := range []float64{-1, 1} {
		f.Path([]scene.Point{
			scene.Pt(0, fluidAxis+sign*h1),
			scene.Pt(fluidJunction-taper, fluidAxis+sign*h1),
			scene.Pt(fluidJunction+taper, fluidAxis+sign*h2),
			scene.Pt(fluidW, fluidAxis+sign*h2),
		}, false, wall)
	}
	f.Line(scene.Pt(0, fluidAxis), scene.Pt(fluidW, fluidAxis), guideStyle)

	dot := scene.Style{Fill: scene.Accent}
	for _, tr := range s.Tracers {
		f.Circle(scene.Pt(tr.X, fluidAxis+tr.Offset), 2.5, dot)
	}

	// Arrow lengths share one scale so the speed ratio is visible.
	v2 := d.Value("v2")
	scale := 60 / math.Max(v2, p.V1)
	y := fluidAxis + math.Max(h1, h2) + 30
	f.Arrow(scene.Pt(150, y), scene.Pt(150+p.V1*scale, y), 8, accentStyle)
	f.Arrow(scene.Pt(600, y), scene.Pt(600+v2*scale, y), 8, warmStyle)
	readouts(f, d)
}

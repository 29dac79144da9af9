package physics

import (
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

type PendulumState struct {
	Theta float64 // rad, 0 hanging straight down
	Omega float64 // rad/s
	T     float64
}

type PendulumParams struct {
	Length   float64
	Mass     float64
	Gravity  float64
	Damping  float64
	Angle    float64 // initial angle, degrees
	Substeps int
}

// Pendulum integrates α = -(g/L)·sin θ - b·ω without a small-angle
// approximation. Each frame is split into Substeps equal sub-steps.
type Pendulum struct {
	Integrator dynamo.Integrator
}

const (
	pendulumW     = 600.0
	pendulumH     = 500.0
	pendulumScale = 75.0 // px per m
)

var pendulumPivot = scene.Pt(pendulumW/2, 60)

// NewPendulum builds a pendulum instance. A nil integrator selects
// semi-implicit Euler.
func NewPendulum(integ dynamo.Integrator, values map[string]float64) *dynamo.Instance[PendulumState, PendulumParams] {
	if integ == nil {
		integ = integrators.NewSemiImplicitEuler()
	}
	m := Pendulum{Integrator: integ}
	return dynamo.NewInstance[PendulumState, PendulumParams](m,
		dynamo.WithValues[PendulumState, PendulumParams](values),
		dynamo.WithTrail(120, func(s PendulumState, p PendulumParams) (scene.Point, bool) {
			return bobPosition(s, p), true
		}),
	)
}

func (Pendulum) Kind() dynamo.Kind                   { return dynamo.KindPendulum }
func (Pendulum) Size() (float64, float64)            { return pendulumW, pendulumH }
func (Pendulum) Labels() []string                    { return []string{"theta", "omega"} }
func (Pendulum) Vector(s PendulumState) dynamo.State { return dynamo.State{s.Theta, s.Omega} }

func (Pendulum) Specs() []params.Spec {
	return []params.Spec{
		spec("length", "Length", "m", 0.1, 5, 0.1, 1),
		spec("mass", "Mass", "kg", 0.1, 20, 0.1, 1),
		spec("gravity", "Gravity", "m/s²", 0.1, 30, 0.01, standardGravity),
		spec("angle", "Start angle", "°", -90, 90, 1, 30),
		live(spec("damping", "Damping", "1/s", 0, 2, 0.01, 0)),
		spec("substeps", "Sub-steps", "", 1, 32, 1, 4),
	}
}

func (Pendulum) Decode(s *params.Store) PendulumParams {
	return PendulumParams{
		Length:   numeric.Floor(s.Get("length"), 0.01),
		Mass:     numeric.Floor(s.Get("mass"), 0.01),
		Gravity:  s.Get("gravity"),
		Damping:  s.Get("damping"),
		Angle:    s.Get("angle"),
		Substeps: s.Int("substeps"),
	}
}

func (Pendulum) Initial(p PendulumParams) PendulumState {
	return PendulumState{Theta: numeric.Rad(p.Angle)}
}

type pendulumSystem struct{ g, l, b float64 }

func (pendulumSystem) Dim() int { return 2 }

func (ps pendulumSystem) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -(ps.g/ps.l)*math.Sin(x[0]) - ps.b*x[1]}
}

func (m Pendulum) Step(s PendulumState, p PendulumParams, dt float64) (PendulumState, dynamo.Outcome) {
	sys := pendulumSystem{g: p.Gravity, l: p.Length, b: p.Damping}
	x := integrators.SubStep(m.Integrator, sys, dynamo.State{s.Theta, s.Omega}, s.T, dt, p.Substeps)
	return PendulumState{Theta: x[0], Omega: x[1], T: s.T + dt}, dynamo.Outcome{}
}

// SmallAnglePeriod is 2π√(L/g), or 0 when g <= 0.
func SmallAnglePeriod(length, g float64) float64 {
	if g <= 0 || length <= 0 {
		return 0
	}
	return 2 * math.Pi * math.Sqrt(length/g)
}

// LargeAnglePeriod applies the series T0(1 + θ²/16 + 11θ⁴/3072) for
// amplitude θ in radians.
func LargeAnglePeriod(length, g, amplitude float64) float64 {
	t2 := amplitude * amplitude
	return SmallAnglePeriod(length, g) * (1 + t2/16 + 11*t2*t2/3072)
}

func pendulumEnergy(s PendulumState, p PendulumParams) (ke, pe float64) {
	v := p.Length * s.Omega
	ke = 0.5 * p.Mass * v * v
	pe = p.Mass * p.Gravity * p.Length * (1 - math.Cos(s.Theta))
	return ke, pe
}

func (Pendulum) Derive(s PendulumState, p PendulumParams) dynamo.Derived {
	ke, pe := pendulumEnergy(s, p)
	// Amplitude implied by the current energy, so damping shows up in the period.
	cosMax := numeric.Clamp(1-numeric.SafeDiv(ke+pe, p.Mass*p.Gravity*p.Length, 0), -1, 1)
	amplitude := math.Acos(cosMax)

	var d dynamo.Derived
	d.Add("angle", "Angle", "°", numeric.Deg(s.Theta))
	d.Add("omega", "Angular velocity", "rad/s", s.Omega)
	d.Add("kinetic", "Kinetic energy", "J", ke)
	d.Add("potential", "Potential energy", "J", pe)
	d.Add("energy", "Total energy", "J", ke+pe)
	d.Add("period", "Period (small angle)", "s", SmallAnglePeriod(p.Length, p.Gravity))
	d.Add("period_large", "Period (amplitude)", "s", LargeAnglePeriod(p.Length, p.Gravity, amplitude))
	return d
}

func bobPosition(s PendulumState, p PendulumParams) scene.Point {
	r := p.Length * pendulumScale
	return pendulumPivot.Add(scene.Pt(r*math.Sin(s.Theta), r*math.Cos(s.Theta)))
}

func (Pendulum) Draw(f *scene.Frame, s PendulumState, p PendulumParams, d dynamo.Derived, tr []scene.Point) {
	f.Line(scene.Pt(pendulumPivot.X-80, pendulumPivot.Y), scene.Pt(pendulumPivot.X+80, pendulumPivot.Y), groundStyle)
	f.Line(pendulumPivot, pendulumPivot.Add(scene.Pt(0, p.Length*pendulumScale)), guideStyle)
	trail(f, tr)

	bob := bobPosition(s, p)
	f.Line(pendulumPivot, bob, bodyStyle)
	f.Circle(pendulumPivot, 4, scene.Style{Fill: scene.Muted})
	f.Circle(bob, 10+4*math.Cbrt(p.Mass), ballFill(scene.Accent, scene.Negative))
	readouts(f, d)
}

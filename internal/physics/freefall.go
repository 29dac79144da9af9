package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

// MaxFreeFallStep caps the explicit Euler step regardless of frame time.
// Longer frames are split into equal steps no larger than this.
const MaxFreeFallStep = 0.05

type FreeFallState struct {
	Fallen   float64 // m below the drop point
	Velocity float64 // m/s, positive downwards
	T        float64
	Landed   bool
}

type FreeFallParams struct {
	Mass    float64
	Drag    float64 // k in F = k·v²
	Gravity float64
	Height  float64
}

// FreeFall drops a body under a = g - (k/m)·v².
type FreeFall struct{}

const (
	freeFallW      = 400.0
	freeFallH      = 600.0
	freeFallTop    = 40.0
	freeFallGround = 560.0
)

func NewFreeFall(values map[string]float64) *dynamo.Instance[FreeFallState, FreeFallParams] {
	return dynamo.NewInstance[FreeFallState, FreeFallParams](FreeFall{},
		dynamo.WithValues[FreeFallState, FreeFallParams](values))
}

func (FreeFall) Kind() dynamo.Kind                   { return dynamo.KindFreeFall }
func (FreeFall) Size() (float64, float64)            { return freeFallW, freeFallH }
func (FreeFall) Labels() []string                    { return []string{"fallen", "velocity"} }
func (FreeFall) Vector(s FreeFallState) dynamo.State { return dynamo.State{s.Fallen, s.Velocity} }

func (FreeFall) Specs() []params.Spec {
	return []params.Spec{
		spec("mass", "Mass", "kg", 0.1, 100, 0.1, 5),
		spec("drag", "Drag coefficient", "kg/m", 0, 2, 0.01, 0.25),
		spec("gravity", "Gravity", "m/s²", 0.1, 30, 0.01, standardGravity),
		spec("height", "Drop height", "m", 1, 500, 1, 100),
	}
}

func (FreeFall) Decode(s *params.Store) FreeFallParams {
	return FreeFallParams{
		Mass:    numeric.Floor(s.Get("mass"), 0.01),
		Drag:    math.Max(0, s.Get("drag")),
		Gravity: s.Get("gravity"),
		Height:  numeric.Floor(s.Get("height"), 0.01),
	}
}

func (FreeFall) Initial(FreeFallParams) FreeFallState { return FreeFallState{} }

type dragSystem struct{ g, kOverM float64 }

func (dragSystem) Dim() int { return 2 }

func (ds dragSystem) Derive(x dynamo.State, _ float64) dynamo.State {
	v := x[1]
	return dynamo.State{v, ds.g - ds.kOverM*v*math.Abs(v)}
}

// Step uses explicit Euler, so the new position comes from the velocity at
// the start of the step.
func (FreeFall) Step(s FreeFallState, p FreeFallParams, dt float64) (FreeFallState, dynamo.Outcome) {
	var out dynamo.Outcome
	if s.Landed {
		return s, out
	}
	n := max(1, int(math.Ceil(dt/MaxFreeFallStep-1e-9)))
	h := dt / float64(n)
	sys := dragSystem{g: p.Gravity, kOverM: p.Drag / p.Mass}
	euler := integrators.NewEuler()

	next := s
	for i := 0; i < n; i++ {
		x := euler.Step(sys, dynamo.State{next.Fallen, next.Velocity}, next.T, h)
		next.Fallen, next.Velocity, next.T = x[0], x[1], next.T+h
		if next.Fallen >= p.Height {
			next.Fallen = p.Height
			next.Landed = true
			out.Stop("landed", next.T, fmt.Sprintf("impact at %.2f m/s", next.Velocity))
			break
		}
	}
	return next, out
}

// TerminalVelocity is √(mg/k), or 0 when there is no drag.
func TerminalVelocity(mass, g, k float64) float64 {
	if k < numeric.Epsilon || g <= 0 || mass <= 0 {
		return 0
	}
	return math.Sqrt(mass * g / k)
}

func (FreeFall) Derive(s FreeFallState, p FreeFallParams) dynamo.Derived {
	vt := TerminalVelocity(p.Mass, p.Gravity, p.Drag)
	drag := p.Drag * s.Velocity * s.Velocity

	var d dynamo.Derived
	d.Add("time", "Time", "s", s.T)
	d.Add("velocity", "Velocity", "m/s", s.Velocity)
	d.Add("altitude", "Altitude", "m", p.Height-s.Fallen)
	d.Add("terminal", "Terminal velocity", "m/s", vt)
	d.Add("drag", "Drag force", "N", drag)
	d.Add("acceleration", "Acceleration", "m/s²", p.Gravity-drag/p.Mass)
	d.Add("fraction", "v / v_T", "", numeric.SafeDiv(s.Velocity, vt, 0))
	return d
}

func (FreeFall) Draw(f *scene.Frame, s FreeFallState, p FreeFallParams, d dynamo.Derived, _ []scene.Point) {
	scale := (freeFallGround - freeFallTop) / p.Height
	cx := freeFallW / 2

	f.Line(scene.Pt(40, freeFallGround), scene.Pt(freeFallW-40, freeFallGround), groundStyle)
	for i := 0; i <= 4; i++ {
		y := freeFallTop + float64(i)*(freeFallGround-freeFallTop)/4
		f.Line(scene.Pt(freeFallW-60, y), scene.Pt(freeFallW-48, y), guideStyle)
		f.Text(scene.Pt(freeFallW-44, y+4), numeric.Format(p.Height*(1-float64(i)/4), 0, "m"), 10, labelStyle)
	}

	body := scene.Pt(cx, freeFallTop+s.Fallen*scale)
	r := 8 + 3*math.Cbrt(p.Mass)
	f.Circle(body, r, ballFill(scene.Warm, scene.Positive))

	// Weight down, drag up, both scaled to the weight.
	f.Arrow(body, body.Add(scene.Pt(0, 40)), 8, warmStyle)
	if dragRatio := numeric.SafeDiv(d.Value("drag"), p.Mass*p.Gravity, 0); dragRatio > 0 {
		l := 40 * math.Min(dragRatio, 1.5)
		f.Arrow(body, body.Add(scene.Pt(0, -l)), arrowHead(l), accentStyle)
	}
	readouts(f, d)
}

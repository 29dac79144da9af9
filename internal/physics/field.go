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

const (
	coulombK = 8.9875517923e9
	// fieldMinR floors the distance to a source charge, in px.
	fieldMinR       = 10.0
	fieldChargeSize = 15.0
	fieldW          = 600.0
	fieldH          = 500.0
	fieldGrid       = 40.0
	// arrowSaturation is the limit arrow length in px.
	arrowSaturation = 30.0
	// arrowGain turns N/C into raw px before compression.
	arrowGain     = 1e-3
	fieldSubsteps = 4
)

// Charge is a point source, Q in µC at canvas coordinates.
type Charge struct {
	X, Y float64
	Q    float64
}

// FieldAt sums k·q/r² over the charges at p, with r floored at fieldMinR.
// Distances are in px, converted with PxPerMeter; the result is in N/C.
func FieldAt(charges []Charge, p scene.Point) scene.Point {
	var e scene.Point
	for _, c := range charges {
		if c.Q == 0 {
			continue
		}
		dx, dy := p.X-c.X, p.Y-c.Y
		r := math.Max(math.Hypot(dx, dy), fieldMinR)
		rm := r / PxPerMeter
		mag := coulombK * c.Q * 1e-6 / (rm * rm)
		e = e.Add(scene.Pt(dx/r, dy/r).Scale(mag))
	}
	return e
}

// PotentialAt sums k·q/r in volts.
func PotentialAt(charges []Charge, p scene.Point) float64 {
	v := 0.0
	for _, c := range charges {
		r := math.Max(math.Hypot(p.X-c.X, p.Y-c.Y), fieldMinR) / PxPerMeter
		v += coulombK * c.Q * 1e-6 / r
	}
	return v
}

// CompressArrow maps a raw length onto [0, s) via len·s/(len+s).
func CompressArrow(length, s float64) float64 {
	if length <= 0 {
		return 0
	}
	return length * s / (length + s)
}

// Probe is the optional mobile test charge, with position in px and
// velocity in px/s.
type Probe struct {
	X, Y, VX, VY float64
}

type FieldState struct {
	Probe  Probe
	Active bool
	T      float64
}

type FieldParams struct {
	Charges   []Charge
	ProbeQ    float64 // µC, 0 disables the probe
	ProbeMass float64 // g
	ProbeX    float64
	ProbeY    float64
}

// Field renders the field of up to three charges and moves a test charge
// through it.
type Field struct {
	Integrator dynamo.Integrator
}

func NewField(values map[string]float64) *dynamo.Instance[FieldState, FieldParams] {
	m := Field{Integrator: integrators.NewSemiImplicitEuler()}
	return dynamo.NewInstance[FieldState, FieldParams](m,
		dynamo.WithValues[FieldState, FieldParams](values),
		dynamo.WithTrail(240, func(s FieldState, _ FieldParams) (scene.Point, bool) {
			return scene.Pt(s.Probe.X, s.Probe.Y), s.Active
		}),
	)
}

func (Field) Kind() dynamo.Kind        { return dynamo.KindField }
func (Field) Size() (float64, float64) { return fieldW, fieldH }
func (Field) Labels() []string         { return []string{"x", "y", "vx", "vy"} }

func (Field) Vector(s FieldState) dynamo.State {
	return dynamo.State{s.Probe.X, s.Probe.Y, s.Probe.VX, s.Probe.VY}
}

func (Field) Specs() []params.Spec {
	return []params.Spec{
		spec("q1", "Charge 1", "µC", -10, 10, 0.5, 5),
		spec("x1", "Charge 1 x", "px", 0, fieldW, 10, 200),
		spec("y1", "Charge 1 y", "px", 0, fieldH, 10, 250),
		spec("q2", "Charge 2", "µC", -10, 10, 0.5, -5),
		spec("x2", "Charge 2 x", "px", 0, fieldW, 10, 400),
		spec("y2", "Charge 2 y", "px", 0, fieldH, 10, 250),
		spec("q3", "Charge 3", "µC", -10, 10, 0.5, 0),
		spec("x3", "Charge 3 x", "px", 0, fieldW, 10, 300),
		spec("y3", "Charge 3 y", "px", 0, fieldH, 10, 120),
		spec("probe_q", "Test charge", "µC", -5, 5, 0.1, 0),
		spec("probe_mass", "Test mass", "g", 0.1, 10, 0.1, 1),
		spec("probe_x", "Test start x", "px", 0, fieldW, 10, 300),
		spec("probe_y", "Test start y", "px", 0, fieldH, 10, 150),
	}
}

func (Field) Decode(s *params.Store) FieldParams {
	p := FieldParams{
		ProbeQ:    s.Get("probe_q"),
		ProbeMass: numeric.Floor(s.Get("probe_mass"), 0.01),
		ProbeX:    s.Get("probe_x"),
		ProbeY:    s.Get("probe_y"),
	}
	for i := 1; i <= 3; i++ {
		p.Charges = append(p.Charges, Charge{
			X: s.Get(fmt.Sprintf("x%d", i)),
			Y: s.Get(fmt.Sprintf("y%d", i)),
			Q: s.Get(fmt.Sprintf("q%d", i)),
		})
	}
	return p
}

func (Field) Initial(p FieldParams) FieldState {
	return FieldState{
		Probe:  Probe{X: p.ProbeX, Y: p.ProbeY},
		Active: p.ProbeQ != 0,
	}
}

// probeSystem is the probe ODE in metres: [x, y, vx, vy].
type probeSystem struct {
	charges []Charge
	qOverM  float64 // C/kg
}

func (probeSystem) Dim() int { return 4 }

func (ps probeSystem) Derive(x dynamo.State, _ float64) dynamo.State {
	e := FieldAt(ps.charges, scene.Pt(x[0]*PxPerMeter, x[1]*PxPerMeter))
	return dynamo.State{x[2], x[3], ps.qOverM * e.X, ps.qOverM * e.Y}
}

func (m Field) Step(s FieldState, p FieldParams, dt float64) (FieldState, dynamo.Outcome) {
	var out dynamo.Outcome
	next := s
	next.T = s.T + dt
	if !s.Active {
		return next, out
	}

	sys := probeSystem{charges: p.Charges, qOverM: p.ProbeQ * 1e-6 / (p.ProbeMass * 1e-3)}
	x := dynamo.State{s.Probe.X / PxPerMeter, s.Probe.Y / PxPerMeter, s.Probe.VX / PxPerMeter, s.Probe.VY / PxPerMeter}
	h := dt / fieldSubsteps
	for i := 0; i < fieldSubsteps; i++ {
		x = m.Integrator.Step(sys, x, s.T+float64(i)*h, h)
		next.Probe = Probe{X: x[0] * PxPerMeter, Y: x[1] * PxPerMeter, VX: x[2] * PxPerMeter, VY: x[3] * PxPerMeter}
		if probeStopped(&next, p, &out) {
			return next, out
		}
	}
	return next, out
}

// probeStopped checks the probe against the charges and the canvas edge.
func probeStopped(s *FieldState, p FieldParams, out *dynamo.Outcome) bool {
	pos := scene.Pt(s.Probe.X, s.Probe.Y)
	for i, c := range p.Charges {
		if c.Q != 0 && pos.Dist(scene.Pt(c.X, c.Y)) < fieldChargeSize {
			s.Active = false
			out.Stop("hit", s.T, fmt.Sprintf("reached charge %d", i+1))
			return true
		}
	}
	if !pos.Finite() || pos.X < 0 || pos.X > fieldW || pos.Y < 0 || pos.Y > fieldH {
		s.Active = false
		out.Stop("escaped", s.T, "left the field")
		return true
	}
	return false
}

func (Field) Derive(s FieldState, p FieldParams) dynamo.Derived {
	at := scene.Pt(fieldW/2, fieldH/2)
	if p.ProbeQ != 0 {
		at = scene.Pt(s.Probe.X, s.Probe.Y)
	}
	e := FieldAt(p.Charges, at)
	force := e.Len() * math.Abs(p.ProbeQ) * 1e-6

	var d dynamo.Derived
	d.Add("field", "Field strength", "N/C", e.Len())
	d.Add("potential", "Potential", "V", PotentialAt(p.Charges, at))
	d.Add("force", "Force on test charge", "N", force)
	d.Add("speed", "Test charge speed", "m/s", math.Hypot(s.Probe.VX, s.Probe.VY)/PxPerMeter)
	return d
}

func (Field) Draw(f *scene.Frame, s FieldState, p FieldParams, d dynamo.Derived, tr []scene.Point) {
	arrow := scene.Style{Stroke: scene.Muted, Width: 1}
	for y := fieldGrid / 2; y < fieldH; y += fieldGrid {
		for x := fieldGrid / 2; x < fieldW; x += fieldGrid {
			pt := scene.Pt(x, y)
			if nearCharge(p.Charges, pt, fieldChargeSize+5) {
				continue
			}
			e := FieldAt(p.Charges, pt)
			mag := e.Len()
			if mag <= 0 {
				continue
			}
			l := CompressArrow(mag*arrowGain, arrowSaturation)
			tip := pt.Add(e.Scale(l / mag))
			f.Arrow(pt, tip, arrowHead(l), arrow)
		}
	}

	for _, c := range p.Charges {
		if c.Q == 0 {
			continue
		}
		color, sign := scene.Positive, "+"
		if c.Q < 0 {
			color, sign = scene.Negative, "−"
		}
		at := scene.Pt(c.X, c.Y)
		f.Circle(at, fieldChargeSize, scene.Style{Stroke: color, Fill: color, Width: 1})
		f.Text(at.Add(scene.Pt(-4, 5)), sign, 14, labelStyle)
	}

	if p.ProbeQ != 0 {
		trail(f, tr)
		f.Circle(scene.Pt(s.Probe.X, s.Probe.Y), 5, scene.Style{Fill: scene.Success})
	}
	readouts(f, d)
}

func nearCharge(charges []Charge, p scene.Point, r float64) bool {
	for _, c := range charges {
		if c.Q != 0 && p.Dist(scene.Pt(c.X, c.Y)) < r {
			return true
		}
	}
	return false
}

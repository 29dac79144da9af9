package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	// PxPerMeter converts lever-arm positions on the beam into metres.
	PxPerMeter      = 100.0
	balanceMaxAngle = 20.0 // degrees
	// balanceStiffness is the fraction of the remaining gap closed per frame.
	balanceStiffness = 0.1
	balanceSettled   = 0.01 // degrees
	balanceW         = 700.0
	balanceH         = 400.0
	beamHalf         = 300.0
)

var balancePivot = scene.Pt(balanceW/2, 260)

type BalanceState struct {
	Angle    float64 // degrees, positive tips the right end down
	T        float64
	Balanced bool
}

// Weight is a mass at a signed lever arm in px (negative is left of the pivot).
type Weight struct {
	Mass float64
	Arm  float64
}

type BalanceParams struct {
	Weights []Weight
	Gain    float64 // degrees per N·m
	Gravity float64
}

// Balance relaxes the beam angle toward a target proportional to the net
// torque. It is a damped visual approximation, not rotational dynamics.
type Balance struct{}

func NewBalance(values map[string]float64) *dynamo.Instance[BalanceState, BalanceParams] {
	return dynamo.NewInstance[BalanceState, BalanceParams](Balance{},
		dynamo.WithValues[BalanceState, BalanceParams](values))
}

func (Balance) Kind() dynamo.Kind                  { return dynamo.KindBalance }
func (Balance) Size() (float64, float64)           { return balanceW, balanceH }
func (Balance) Labels() []string                   { return []string{"angle"} }
func (Balance) Vector(s BalanceState) dynamo.State { return dynamo.State{s.Angle} }

// Masses and positions stay live so weights can be moved while the beam
// settles.
func (Balance) Specs() []params.Spec {
	return []params.Spec{
		live(spec("m1", "Mass 1", "kg", 0, 10, 0.1, 2)),
		live(spec("s1", "Position 1", "px", -beamHalf, beamHalf, 10, -150)),
		live(spec("m2", "Mass 2", "kg", 0, 10, 0.1, 3)),
		live(spec("s2", "Position 2", "px", -beamHalf, beamHalf, 10, 150)),
		live(spec("m3", "Mass 3", "kg", 0, 10, 0.1, 0)),
		live(spec("s3", "Position 3", "px", -beamHalf, beamHalf, 10, 200)),
		spec("gain", "Tilt gain", "°/N·m", 0.1, 20, 0.1, 2),
	}
}

func (Balance) Decode(s *params.Store) BalanceParams {
	p := BalanceParams{Gain: s.Get("gain"), Gravity: standardGravity}
	for i := 1; i <= 3; i++ {
		p.Weights = append(p.Weights, Weight{
			Mass: s.Get(fmt.Sprintf("m%d", i)),
			Arm:  s.Get(fmt.Sprintf("s%d", i)),
		})
	}
	return p
}

func (Balance) Initial(BalanceParams) BalanceState { return BalanceState{} }

// NetTorque is Σ m·g·(s/PxPerMeter), positive clockwise.
func NetTorque(weights []Weight, g float64) float64 {
	tau := 0.0
	for _, w := range weights {
		tau += w.Mass * g * (w.Arm / PxPerMeter)
	}
	return tau
}

// TargetAngle clamps τ·gain into ±20°.
func TargetAngle(tau, gain float64) float64 {
	return numeric.ClampAbs(tau*gain, balanceMaxAngle)
}

func (Balance) Step(s BalanceState, p BalanceParams, dt float64) (BalanceState, dynamo.Outcome) {
	var out dynamo.Outcome
	tau := NetTorque(p.Weights, p.Gravity)
	target := TargetAngle(tau, p.Gain)

	next := BalanceState{T: s.T + dt}
	next.Angle = s.Angle + (target-s.Angle)*perFrame(balanceStiffness, dt)

	if math.Abs(tau) < numeric.Epsilon && math.Abs(next.Angle) < balanceSettled {
		next.Angle = 0
		next.Balanced = true
		out.Stop("balanced", next.T, "net torque is zero")
	}
	return next, out
}

func (Balance) Derive(s BalanceState, p BalanceParams) dynamo.Derived {
	left, right := 0.0, 0.0
	for _, w := range p.Weights {
		t := w.Mass * p.Gravity * (w.Arm / PxPerMeter)
		if t < 0 {
			left -= t
		} else {
			right += t
		}
	}
	tau := right - left

	var d dynamo.Derived
	d.Add("torque", "Net torque", "N·m", tau)
	d.Add("left", "Left torque", "N·m", left)
	d.Add("right", "Right torque", "N·m", right)
	d.Add("target", "Target angle", "°", TargetAngle(tau, p.Gain))
	d.Add("angle", "Beam angle", "°", s.Angle)
	return d
}

func (Balance) Draw(f *scene.Frame, s BalanceState, p BalanceParams, d dynamo.Derived, _ []scene.Point) {
	a := numeric.Rad(s.Angle)
	dir := scene.Pt(math.Cos(a), math.Sin(a))
	up := scene.Pt(math.Sin(a), -math.Cos(a))

	base := balancePivot.Add(scene.Pt(0, 80))
	f.Path([]scene.Point{balancePivot, base.Add(scene.Pt(-40, 0)), base.Add(scene.Pt(40, 0))}, true,
		scene.Style{Stroke: scene.Muted, Fill: scene.Muted, Width: 1})
	f.Line(scene.Pt(100, base.Y), scene.Pt(balanceW-100, base.Y), groundStyle)
	f.Line(balancePivot.Add(dir.Scale(-beamHalf)), balancePivot.Add(dir.Scale(beamHalf)),
		scene.Style{Stroke: scene.Foreground, Width: 6})
	for x := -beamHalf; x <= beamHalf; x += 50 {
		tick := balancePivot.Add(dir.Scale(x))
		f.Line(tick, tick.Add(up.Scale(-6)), guideStyle)
	}

	for _, w := range p.Weights {
		if w.Mass <= 0 {
			continue
		}
		side := 12 + 6*math.Sqrt(w.Mass)
		c := balancePivot.Add(dir.Scale(w.Arm)).Add(up.Scale(side/2 + 3))
		f.Rect(c.Sub(scene.Pt(side/2, side/2)), c.Add(scene.Pt(side/2, side/2)), ballFill(scene.Warm, scene.Positive))
		f.Text(c.Add(scene.Pt(-side/2, -side/2-6)), numeric.Format(w.Mass, 1, "kg"), 10, labelStyle)
	}
	if s.Balanced {
		f.Text(scene.Pt(balanceW/2-30, 60), "Balanced", 16, scene.Style{Fill: scene.Success})
	}
	readouts(f, d)
}

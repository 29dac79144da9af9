package physics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

// Body is a rigid disc.
type Body struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Mass   float64
}

func (b Body) Speed() float64 { return math.Hypot(b.VX, b.VY) }

func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * (b.VX*b.VX + b.VY*b.VY)
}

// ResolveElastic1D returns the post-collision velocities of two bodies
// moving along one axis. Equal masses swap velocities exactly.
func ResolveElastic1D(m1, u1, m2, u2 float64) (v1, v2 float64) {
	if m1 == m2 {
		return u2, u1
	}
	total := m1 + m2
	if total <= 0 {
		return u1, u2
	}
	v1 = ((m1-m2)*u1 + 2*m2*u2) / total
	v2 = ((m2-m1)*u2 + 2*m1*u1) / total
	return v1, v2
}

// Collide separates two overlapping discs by half the penetration each along
// the contact normal and, if they are approaching, exchanges their normal
// velocity components elastically. It reports whether velocities changed.
func Collide(a, b *Body) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	reach := a.Radius + b.Radius
	if dist > reach {
		return false
	}

	nx, ny := 1.0, 0.0
	if dist > numeric.Epsilon {
		nx, ny = dx/dist, dy/dist
	}
	half := (reach - dist) / 2
	a.X, a.Y = a.X-nx*half, a.Y-ny*half
	b.X, b.Y = b.X+nx*half, b.Y+ny*half

	ua := a.VX*nx + a.VY*ny
	ub := b.VX*nx + b.VY*ny
	if ua-ub <= 0 {
		return false
	}
	va, vb := ResolveElastic1D(a.Mass, ua, b.Mass, ub)
	// An axis-aligned normal replaces the component outright, so an equal-mass
	// swap stays exact.
	switch {
	case ny == 0:
		a.VX, b.VX = va*nx, vb*nx
	case nx == 0:
		a.VY, b.VY = va*ny, vb*ny
	default:
		a.VX, a.VY = a.VX+(va-ua)*nx, a.VY+(va-ua)*ny
		b.VX, b.VY = b.VX+(vb-ub)*nx, b.VY+(vb-ub)*ny
	}
	return true
}

// bounceWalls keeps b inside [minX,maxX]×[minY,maxY]. A reflected velocity
// component is multiplied by damping.
func bounceWalls(b *Body, minX, maxX, minY, maxY, damping float64) bool {
	hit := false
	if b.X-b.Radius < minX {
		b.X, b.VX, hit = minX+b.Radius, math.Abs(b.VX)*damping, true
	} else if b.X+b.Radius > maxX {
		b.X, b.VX, hit = maxX-b.Radius, -math.Abs(b.VX)*damping, true
	}
	if b.Y-b.Radius < minY {
		b.Y, b.VY, hit = minY+b.Radius, math.Abs(b.VY)*damping, true
	} else if b.Y+b.Radius > maxY {
		b.Y, b.VY, hit = maxY-b.Radius, -math.Abs(b.VY)*damping, true
	}
	return hit
}

func cloneBodies(bs []Body) []Body {
	out := make([]Body, len(bs))
	copy(out, bs)
	return out
}

func momentum(bs []Body) (px, py float64) {
	for _, b := range bs {
		px += b.Mass * b.VX
		py += b.Mass * b.VY
	}
	return px, py
}

func kinetic(bs []Body) float64 {
	e := 0.0
	for _, b := range bs {
		e += b.KineticEnergy()
	}
	return e
}

// CollisionState is shared by the 1D and 2D collision families.
type CollisionState struct {
	Bodies     []Body
	Collisions int
	T          float64
}

func collisionVector(s CollisionState) dynamo.State {
	x := make(dynamo.State, 0, 2*len(s.Bodies))
	for _, b := range s.Bodies {
		x = append(x, b.X)
	}
	for _, b := range s.Bodies {
		x = append(x, b.VX)
	}
	return x
}

const (
	collisionW = 640.0
	collisionH = 400.0
	// collisionSubsteps limits how far a body moves between overlap checks.
	collisionSubsteps = 4
)

// Carts are two bodies on a 10 m track.
type Carts struct{}

type CartsParams struct {
	M1, M2  float64
	V1, V2  float64
	Damping float64
}

const (
	trackLength = 10.0
	trackScale  = (collisionW - 40) / trackLength
	trackY      = 240.0
)

func NewCarts(values map[string]float64) *dynamo.Instance[CollisionState, CartsParams] {
	return dynamo.NewInstance[CollisionState, CartsParams](Carts{},
		dynamo.WithValues[CollisionState, CartsParams](values))
}

func (Carts) Kind() dynamo.Kind                    { return dynamo.KindCollision }
func (Carts) Size() (float64, float64)             { return collisionW, collisionH }
func (Carts) Labels() []string                     { return []string{"x1", "x2", "v1", "v2"} }
func (Carts) Vector(s CollisionState) dynamo.State { return collisionVector(s) }

func (Carts) Specs() []params.Spec {
	return []params.Spec{
		spec("m1", "Mass 1", "kg", 0.1, 20, 0.1, 2),
		spec("m2", "Mass 2", "kg", 0.1, 20, 0.1, 2),
		spec("v1", "Velocity 1", "m/s", -10, 10, 0.1, 3),
		spec("v2", "Velocity 2", "m/s", -10, 10, 0.1, -2),
		live(spec("damping", "Wall damping", "", 0, 1, 0.01, 0.95)),
	}
}

func (Carts) Decode(s *params.Store) CartsParams {
	return CartsParams{
		M1:      numeric.Floor(s.Get("m1"), 0.01),
		M2:      numeric.Floor(s.Get("m2"), 0.01),
		V1:      s.Get("v1"),
		V2:      s.Get("v2"),
		Damping: s.Get("damping"),
	}
}

func cartRadius(m float64) float64 { return 0.25 * math.Cbrt(m) }

func (Carts) Initial(p CartsParams) CollisionState {
	return CollisionState{Bodies: []Body{
		{X: 2.5, VX: p.V1, Radius: cartRadius(p.M1), Mass: p.M1},
		{X: 7.5, VX: p.V2, Radius: cartRadius(p.M2), Mass: p.M2},
	}}
}

func (Carts) Step(s CollisionState, p CartsParams, dt float64) (CollisionState, dynamo.Outcome) {
	var out dynamo.Outcome
	next := CollisionState{Bodies: cloneBodies(s.Bodies), Collisions: s.Collisions, T: s.T + dt}
	h := dt / collisionSubsteps
	for i := 0; i < collisionSubsteps; i++ {
		for j := range next.Bodies {
			next.Bodies[j].X += next.Bodies[j].VX * h
			bounceWalls(&next.Bodies[j], 0, trackLength, math.Inf(-1), math.Inf(1), p.Damping)
		}
		if Collide(&next.Bodies[0], &next.Bodies[1]) {
			next.Collisions++
			out.Emit("collision", s.T+float64(i+1)*h, fmt.Sprintf("#%d", next.Collisions))
		}
	}
	return next, out
}

func (Carts) Derive(s CollisionState, _ CartsParams) dynamo.Derived {
	px, _ := momentum(s.Bodies)
	var d dynamo.Derived
	d.Add("v1", "Velocity 1", "m/s", s.Bodies[0].VX)
	d.Add("v2", "Velocity 2", "m/s", s.Bodies[1].VX)
	d.Add("momentum", "Momentum", "kg·m/s", px)
	d.Add("kinetic", "Kinetic energy", "J", kinetic(s.Bodies))
	d.Add("collisions", "Collisions", "", float64(s.Collisions))
	return d
}

func (Carts) Draw(f *scene.Frame, s CollisionState, _ CartsParams, d dynamo.Derived, _ []scene.Point) {
	toX := func(x float64) float64 { return 20 + x*trackScale }
	f.Line(scene.Pt(toX(0), trackY+30), scene.Pt(toX(trackLength), trackY+30), groundStyle)
	f.Line(scene.Pt(toX(0), trackY-60), scene.Pt(toX(0), trackY+30), groundStyle)
	f.Line(scene.Pt(toX(trackLength), trackY-60), scene.Pt(toX(trackLength), trackY+30), groundStyle)

	colors := [][2]scene.Color{{scene.Accent, scene.Negative}, {scene.Warm, scene.Positive}}
	for i, b := range s.Bodies {
		half := b.Radius * trackScale
		c := scene.Pt(toX(b.X), trackY+30-half)
		style := ballFill(colors[i%2][0], colors[i%2][1])
		f.Rect(c.Sub(scene.Pt(half, half)), c.Add(scene.Pt(half, half)), style)
		if l := b.VX * 12; math.Abs(l) > 1 {
			f.Arrow(c, c.Add(scene.Pt(l, 0)), arrowHead(math.Abs(l)), accentStyle)
		}
		f.Text(c.Add(scene.Pt(-10, -half-8)), numeric.Format(b.Mass, 1, "kg"), 11, labelStyle)
	}
	readouts(f, d)
}

// GasBox is a 2D box of discs. Body 0 may be made heavier to show Brownian
// motion.
type GasBox struct{}

type GasBoxParams struct {
	Count   int
	Radius  float64
	Speed   float64
	Heavy   float64 // mass of body 0 relative to the others
	Damping float64
	Seed    uint64
}

const gasMargin = 20.0

func NewGasBox(values map[string]float64) *dynamo.Instance[CollisionState, GasBoxParams] {
	return dynamo.NewInstance[CollisionState, GasBoxParams](GasBox{},
		dynamo.WithValues[CollisionState, GasBoxParams](values),
		dynamo.WithTrail(300, func(s CollisionState, _ GasBoxParams) (scene.Point, bool) {
			if len(s.Bodies) == 0 {
				return scene.Point{}, false
			}
			return scene.Pt(s.Bodies[0].X, s.Bodies[0].Y), true
		}),
	)
}

func (GasBox) Kind() dynamo.Kind                    { return dynamo.KindCollision }
func (GasBox) Size() (float64, float64)             { return collisionW, collisionH }
func (GasBox) Vector(s CollisionState) dynamo.State { return collisionVector(s) }
func (GasBox) Labels() []string                     { return nil }

func (GasBox) Specs() []params.Spec {
	return []params.Spec{
		spec("count", "Particles", "", 2, 60, 1, 20),
		spec("radius", "Radius", "px", 3, 20, 1, 8),
		spec("speed", "Initial speed", "px/s", 10, 400, 10, 120),
		spec("heavy", "Heavy particle mass", "×", 1, 50, 1, 1),
		live(spec("damping", "Wall damping", "", 0.5, 1, 0.01, 0.95)),
		spec("seed", "Seed", "", 0, 9999, 1, 1),
	}
}

func (GasBox) Decode(s *params.Store) GasBoxParams {
	return GasBoxParams{
		Count:   s.Int("count"),
		Radius:  s.Get("radius"),
		Speed:   s.Get("speed"),
		Heavy:   s.Get("heavy"),
		Damping: s.Get("damping"),
		Seed:    uint64(s.Int("seed")),
	}
}

// Initial lays discs out on a grid so none start overlapping.
func (GasBox) Initial(p GasBoxParams) CollisionState {
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	cols := int(math.Ceil(math.Sqrt(float64(p.Count) * collisionW / collisionH)))
	rows := (p.Count + cols - 1) / cols
	cw := (collisionW - 2*gasMargin) / float64(cols)
	ch := (collisionH - 2*gasMargin) / float64(rows)

	bodies := make([]Body, p.Count)
	for i := range bodies {
		angle := rng.Float64() * 2 * math.Pi
		bodies[i] = Body{
			X:      gasMargin + cw*(float64(i%cols)+0.5),
			Y:      gasMargin + ch*(float64(i/cols)+0.5),
			VX:     p.Speed * math.Cos(angle),
			VY:     p.Speed * math.Sin(angle),
			Radius: math.Min(p.Radius, 0.45*math.Min(cw, ch)),
			Mass:   1,
		}
	}
	if p.Heavy > 1 && len(bodies) > 0 {
		bodies[0].Mass = p.Heavy
		bodies[0].Radius = math.Min(bodies[0].Radius*math.Cbrt(p.Heavy), 0.45*math.Min(cw, ch))
		bodies[0].VX, bodies[0].VY = 0, 0
	}
	return CollisionState{Bodies: bodies}
}

func (GasBox) Step(s CollisionState, p GasBoxParams, dt float64) (CollisionState, dynamo.Outcome) {
	var out dynamo.Outcome
	next := CollisionState{Bodies: cloneBodies(s.Bodies), Collisions: s.Collisions, T: s.T + dt}
	bs := next.Bodies

	h := dt / collisionSubsteps
	for k := 0; k < collisionSubsteps; k++ {
		for i := range bs {
			bs[i].X += bs[i].VX * h
			bs[i].Y += bs[i].VY * h
			bounceWalls(&bs[i], gasMargin, collisionW-gasMargin, gasMargin, collisionH-gasMargin, p.Damping)
		}
		for i := 0; i < len(bs); i++ {
			for j := i + 1; j < len(bs); j++ {
				if Collide(&bs[i], &bs[j]) {
					next.Collisions++
				}
			}
		}
	}
	if n := next.Collisions - s.Collisions; n > 0 {
		out.Emit("collision", next.T, fmt.Sprintf("%d this step", n))
	}
	return next, out
}

func (GasBox) Derive(s CollisionState, _ GasBoxParams) dynamo.Derived {
	px, py := momentum(s.Bodies)
	mean := 0.0
	for _, b := range s.Bodies {
		mean += b.Speed()
	}
	mean = numeric.SafeDiv(mean, float64(len(s.Bodies)), 0)

	var d dynamo.Derived
	d.Add("momentum", "Momentum", "px/s", math.Hypot(px, py))
	d.Add("kinetic", "Kinetic energy", "", kinetic(s.Bodies))
	d.Add("mean_speed", "Mean speed", "px/s", mean)
	d.Add("collisions", "Collisions", "", float64(s.Collisions))
	return d
}

func (GasBox) Draw(f *scene.Frame, s CollisionState, p GasBoxParams, d dynamo.Derived, tr []scene.Point) {
	f.Rect(scene.Pt(gasMargin, gasMargin), scene.Pt(collisionW-gasMargin, collisionH-gasMargin), groundStyle)
	if p.Heavy > 1 {
		trail(f, tr)
	}
	for i, b := range s.Bodies {
		style := ballFill(scene.Accent, scene.Negative)
		if i == 0 && p.Heavy > 1 {
			style = ballFill(scene.Warm, scene.Positive)
		}
		f.Circle(scene.Pt(b.X, b.Y), b.Radius, style)
	}
	readouts(f, d)
}

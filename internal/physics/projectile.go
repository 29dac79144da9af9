package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

type ProjectileState struct {
	T      float64
	X, Y   float64 // m, Y is height above ground
	Landed bool
}

type ProjectileParams struct {
	Speed   float64
	Angle   float64 // degrees above horizontal
	Height  float64
	Gravity float64
}

func (p ProjectileParams) components() (vx, vy float64) {
	a := numeric.Rad(p.Angle)
	return p.Speed * math.Cos(a), p.Speed * math.Sin(a)
}

// Projectile evaluates the closed-form trajectory at the accumulated time.
type Projectile struct{}

const (
	projectileW      = 800.0
	projectileH      = 450.0
	projectileMargin = 50.0
)

func NewProjectile(values map[string]float64) *dynamo.Instance[ProjectileState, ProjectileParams] {
	return dynamo.NewInstance[ProjectileState, ProjectileParams](Projectile{},
		dynamo.WithValues[ProjectileState, ProjectileParams](values),
		dynamo.WithTrail(400, func(s ProjectileState, p ProjectileParams) (scene.Point, bool) {
			return newProjectileView(p).toScreen(s.X, s.Y), true
		}),
	)
}

func (Projectile) Kind() dynamo.Kind                     { return dynamo.KindProjectile }
func (Projectile) Size() (float64, float64)              { return projectileW, projectileH }
func (Projectile) Labels() []string                      { return []string{"x", "y"} }
func (Projectile) Vector(s ProjectileState) dynamo.State { return dynamo.State{s.X, s.Y} }

func (Projectile) Specs() []params.Spec {
	return []params.Spec{
		spec("speed", "Launch speed", "m/s", 1, 100, 0.5, 20),
		spec("angle", "Launch angle", "°", 0, 90, 1, 45),
		spec("height", "Launch height", "m", 0, 100, 0.5, 0),
		spec("gravity", "Gravity", "m/s²", 0.1, 30, 0.01, standardGravity),
	}
}

func (Projectile) Decode(s *params.Store) ProjectileParams {
	return ProjectileParams{
		Speed:   s.Get("speed"),
		Angle:   s.Get("angle"),
		Height:  math.Max(0, s.Get("height")),
		Gravity: s.Get("gravity"),
	}
}

func (Projectile) Initial(p ProjectileParams) ProjectileState {
	return ProjectileState{Y: p.Height}
}

// FlightTime solves h0 + vy·t - ½gt² = 0 for the positive root. It returns 0
// when g <= 0 or the discriminant is negative.
func FlightTime(vy, h0, g float64) float64 {
	if g <= 0 {
		return 0
	}
	disc := vy*vy + 2*g*h0
	if disc < 0 {
		return 0
	}
	return math.Max(0, (vy+math.Sqrt(disc))/g)
}

// MaxHeight is the apex height, or h0 when launched level or downwards.
func MaxHeight(vy, h0, g float64) float64 {
	if vy <= 0 || g <= 0 {
		return h0
	}
	return h0 + vy*vy/(2*g)
}

func projectileAt(p ProjectileParams, t float64) (x, y float64) {
	vx, vy := p.components()
	return vx * t, p.Height + vy*t - 0.5*p.Gravity*t*t
}

func (Projectile) Step(s ProjectileState, p ProjectileParams, dt float64) (ProjectileState, dynamo.Outcome) {
	var out dynamo.Outcome
	if s.Landed {
		return s, out
	}
	_, vy := p.components()
	tf := FlightTime(vy, p.Height, p.Gravity)

	next := ProjectileState{T: s.T + dt}
	if next.T >= tf {
		next.T = tf
		next.Landed = true
	}
	next.X, next.Y = projectileAt(p, next.T)
	if next.Landed {
		next.Y = 0
		out.Stop("landed", next.T, fmt.Sprintf("range %.2f m", next.X))
	}
	return next, out
}

func (Projectile) Derive(s ProjectileState, p ProjectileParams) dynamo.Derived {
	vx, vy := p.components()
	tf := FlightTime(vy, p.Height, p.Gravity)
	vyNow := vy - p.Gravity*s.T

	var d dynamo.Derived
	d.Add("time", "Time", "s", s.T)
	d.Add("range", "Range", "m", vx*tf)
	d.Add("max_height", "Max height", "m", MaxHeight(vy, p.Height, p.Gravity))
	d.Add("flight_time", "Flight time", "s", tf)
	d.Add("speed", "Speed", "m/s", math.Hypot(vx, vyNow))
	d.Add("x", "Distance", "m", s.X)
	d.Add("y", "Height", "m", s.Y)
	return d
}

// projectileView maps metres onto the canvas so the whole flight fits.
type projectileView struct {
	scale float64
}

func newProjectileView(p ProjectileParams) projectileView {
	vx, vy := p.components()
	rng := math.Max(vx*FlightTime(vy, p.Height, p.Gravity), 1)
	top := math.Max(MaxHeight(vy, p.Height, p.Gravity), 1)
	sx := (projectileW - 2*projectileMargin) / rng
	sy := (projectileH - 2*projectileMargin) / top
	return projectileView{scale: math.Min(sx, sy)}
}

func (v projectileView) toScreen(x, y float64) scene.Point {
	return scene.Pt(projectileMargin+x*v.scale, projectileH-projectileMargin-y*v.scale)
}

func (Projectile) Draw(f *scene.Frame, s ProjectileState, p ProjectileParams, d dynamo.Derived, tr []scene.Point) {
	view := newProjectileView(p)
	ground := projectileH - projectileMargin
	f.Line(scene.Pt(0, ground), scene.Pt(projectileW, ground), groundStyle)
	if p.Height > 0 {
		f.Rect(view.toScreen(-0.5, 0), view.toScreen(0, p.Height), scene.Style{Fill: scene.Muted})
	}

	tf := d.Value("flight_time")
	const samples = 60
	path := make([]scene.Point, 0, samples+1)
	for i := 0; i <= samples; i++ {
		x, y := projectileAt(p, tf*float64(i)/samples)
		path = append(path, view.toScreen(x, math.Max(y, 0)))
	}
	f.Path(path, false, guideStyle)
	trail(f, tr)

	ball := view.toScreen(s.X, s.Y)
	f.Circle(ball, 7, ballFill(scene.Warm, scene.Positive))
	if !s.Landed {
		vx, vy := p.components()
		vel := scene.Pt(vx, -(vy - p.Gravity*s.T)).Scale(1.5)
		f.Arrow(ball, ball.Add(vel), arrowHead(vel.Len()), accentStyle)
	}
	readouts(f, d)
}

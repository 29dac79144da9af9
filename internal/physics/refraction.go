package physics

import (
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

// Refraction is the result of a ray crossing an interface. Angles are in
// radians from the normal.
type Refraction struct {
	Incident  float64
	Refracted float64 // 0 under total internal reflection
	TIR       bool
	// Critical is the critical angle, or 0 when n1 <= n2.
	Critical    float64
	Reflectance float64
}

// Refract applies Snell's law sin θ2 = (n1/n2)·sin θ1. When |sin θ2| > 1 the
// ray is totally internally reflected; the result never holds NaN.
func Refract(n1, n2, theta1 float64) Refraction {
	r := Refraction{Incident: theta1}
	if n1 > n2 && n2 > 0 {
		r.Critical = math.Asin(n2 / n1)
	}
	if n1 <= 0 || n2 <= 0 {
		r.TIR, r.Reflectance = true, 1
		return r
	}
	s := n1 / n2 * math.Sin(theta1)
	if math.Abs(s) > 1 {
		r.TIR, r.Reflectance = true, 1
		return r
	}
	r.Refracted = math.Asin(s)
	r.Reflectance = fresnel(n1, n2, theta1, r.Refracted)
	return r
}

// fresnel is the unpolarised reflectance, the mean of the s and p terms.
func fresnel(n1, n2, ti, tt float64) float64 {
	ci, ct := math.Cos(ti), math.Cos(tt)
	rs := numeric.SafeDiv(n1*ci-n2*ct, n1*ci+n2*ct, 0)
	rp := numeric.SafeDiv(n2*ci-n1*ct, n2*ci+n1*ct, 0)
	return numeric.Clamp((rs*rs+rp*rp)/2, 0, 1)
}

type SnellState struct {
	// Pulse is the position of a light pulse along the ray path, in [0, 1).
	Pulse float64
	T     float64
}

type SnellParams struct {
	N1, N2 float64
	Angle  float64 // degrees
}

// Snell shows a ray crossing a horizontal interface between two media.
type Snell struct{}

const (
	snellW      = 800.0
	snellH      = 450.0
	snellRay    = 200.0
	pulsePeriod = 2.0 // s for one pass along the ray
)

var snellHit = scene.Pt(snellW/2, snellH/2)

func NewSnell(values map[string]float64) *dynamo.Instance[SnellState, SnellParams] {
	return dynamo.NewInstance[SnellState, SnellParams](Snell{},
		dynamo.WithValues[SnellState, SnellParams](values))
}

func (Snell) Kind() dynamo.Kind                { return dynamo.KindRefraction }
func (Snell) Size() (float64, float64)         { return snellW, snellH }
func (Snell) Labels() []string                 { return []string{"pulse"} }
func (Snell) Vector(s SnellState) dynamo.State { return dynamo.State{s.Pulse} }

func (Snell) Specs() []params.Spec {
	return []params.Spec{
		live(spec("n1", "Index (upper)", "", 1, 2.5, 0.01, 1)),
		live(spec("n2", "Index (lower)", "", 1, 2.5, 0.01, 1.5)),
		live(spec("angle", "Incidence", "°", 0, 89, 1, 30)),
	}
}

func (Snell) Decode(s *params.Store) SnellParams {
	return SnellParams{N1: s.Get("n1"), N2: s.Get("n2"), Angle: s.Get("angle")}
}

func (Snell) Initial(SnellParams) SnellState { return SnellState{} }

func (Snell) Step(s SnellState, _ SnellParams, dt float64) (SnellState, dynamo.Outcome) {
	pulse := math.Mod(s.Pulse+dt/pulsePeriod, 1)
	return SnellState{Pulse: pulse, T: s.T + dt}, dynamo.Outcome{}
}

func (Snell) Derive(_ SnellState, p SnellParams) dynamo.Derived {
	r := Refract(p.N1, p.N2, numeric.Rad(p.Angle))
	tir := 0.0
	if r.TIR {
		tir = 1
	}

	var d dynamo.Derived
	d.Add("incident", "Incidence", "°", p.Angle)
	d.Add("refracted", "Refraction", "°", numeric.Deg(r.Refracted))
	d.Add("critical", "Critical angle", "°", numeric.Deg(r.Critical))
	d.Add("reflectance", "Reflectance", "", r.Reflectance)
	d.Add("transmittance", "Transmittance", "", 1-r.Reflectance)
	d.Add("tir", "Total internal reflection", "", tir)
	return d
}

func (Snell) Draw(f *scene.Frame, s SnellState, p SnellParams, d dynamo.Derived, _ []scene.Point) {
	// Darker fill for the denser medium.
	f.Rect(scene.Pt(0, 0), scene.Pt(snellW, snellHit.Y), scene.Style{Fill: scene.Background, Opacity: mediumOpacity(p.N1)})
	f.Rect(scene.Pt(0, snellHit.Y), scene.Pt(snellW, snellH), scene.Style{Fill: scene.Negative, Opacity: mediumOpacity(p.N2)})
	f.Line(scene.Pt(0, snellHit.Y), scene.Pt(snellW, snellHit.Y), groundStyle)
	f.Line(snellHit.Add(scene.Pt(0, -snellRay)), snellHit.Add(scene.Pt(0, snellRay)), guideStyle)

	r := Refract(p.N1, p.N2, numeric.Rad(p.Angle))
	in := snellHit.Add(scene.Pt(-math.Sin(r.Incident), -math.Cos(r.Incident)).Scale(snellRay))
	reflected := snellHit.Add(scene.Pt(math.Sin(r.Incident), -math.Cos(r.Incident)).Scale(snellRay))

	ray := scene.Style{Stroke: scene.Warm, Width: 3}
	f.Line(in, snellHit, ray)
	f.Line(snellHit, reflected, scene.Style{Stroke: scene.Warm, Width: 2, Opacity: math.Max(r.Reflectance, 0.15)})

	end := reflected
	if !r.TIR {
		out := snellHit.Add(scene.Pt(math.Sin(r.Refracted), math.Cos(r.Refracted)).Scale(snellRay))
		f.Line(snellHit, out, scene.Style{Stroke: scene.Warm, Width: 3, Opacity: 1 - r.Reflectance})
		end = out
	}

	// The pulse runs along the incoming ray, then along the outgoing one.
	var pulse scene.Point
	if s.Pulse < 0.5 {
		pulse = in.Lerp(snellHit, s.Pulse*2)
	} else {
		pulse = snellHit.Lerp(end, (s.Pulse-0.5)*2)
	}
	f.Circle(pulse, 5, scene.Style{Fill: scene.Foreground})

	f.Text(scene.Pt(snellW-140, 30), "n₁ = "+numeric.Format(p.N1, 2, ""), 14, labelStyle)
	f.Text(scene.Pt(snellW-140, snellH-20), "n₂ = "+numeric.Format(p.N2, 2, ""), 14, labelStyle)
	if r.TIR {
		f.Text(scene.Pt(snellW/2+20, snellHit.Y+30), "Total internal reflection", 14, scene.Style{Fill: scene.Warm})
	}
	readouts(f, d)
}

func mediumOpacity(n float64) float64 {
	return numeric.Clamp(0.1+(n-1)*0.4, 0.1, 0.8)
}

// Package scene describes what to draw for one frame.
//
// A [Frame] is a flat list of primitives in a fixed logical coordinate space
// (origin top-left, y down). Frames carry no identity: renderers build a new
// one every tick and surfaces (terminal canvas, SVG) rasterise it as is.
package scene

import "math"

type Point struct{ X, Y float64 }

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return p.Sub(q).Len() }
func (p Point) Finite() bool          { return finite(p.X) && finite(p.Y) }
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Color is a CSS hex colour such as "#ff8800".
type Color string

const (
	None       Color = ""
	Foreground Color = "#e6e6e6"
	Muted      Color = "#6b7280"
	Accent     Color = "#38bdf8"
	Warm       Color = "#f97316"
	Positive   Color = "#ef4444"
	Negative   Color = "#3b82f6"
	Success    Color = "#22c55e"
	Background Color = "#0b1020"
)

// Gradient is a two-stop linear fill.
type Gradient struct {
	From, To Color
	Vertical bool
}

// Style is shared by every primitive.
type Style struct {
	Stroke   Color
	Fill     Color
	Width    float64
	Dashed   bool
	Opacity  float64 // 0 means opaque
	Gradient *Gradient
}

// Primitive is one of Line, Circle, Rect, Path, Arrow or Text.
type Primitive interface {
	Bounds() (min, max Point)
	primitive()
}

type Line struct {
	From, To Point
	Style
}

type Circle struct {
	Center Point
	Radius float64
	Style
}

type Rect struct {
	Min, Max Point
	Style
}

type Path struct {
	Points []Point
	Closed bool
	Style
}

// Arrow is a line with a head at To.
type Arrow struct {
	From, To Point
	Head     float64
	Style
}

type Text struct {
	At    Point
	Value string
	Size  float64
	Style
}

// HeadPoints returns the triangle at the tip, or nil for a zero-length or
// headless arrow.
func (a Arrow) HeadPoints() []Point {
	d := a.To.Sub(a.From)
	l := d.Len()
	if l == 0 || a.Head <= 0 {
		return nil
	}
	u := d.Scale(1 / l)
	n := Pt(-u.Y, u.X)
	base := a.To.Sub(u.Scale(a.Head))
	w := a.Head * 0.5
	return []Point{a.To, base.Add(n.Scale(w)), base.Sub(n.Scale(w))}
}

func (Line) primitive()   {}
func (Circle) primitive() {}
func (Rect) primitive()   {}
func (Path) primitive()   {}
func (Arrow) primitive()  {}
func (Text) primitive()   {}

func (l Line) Bounds() (Point, Point)  { return span(l.From, l.To) }
func (a Arrow) Bounds() (Point, Point) { return span(a.From, a.To) }
func (r Rect) Bounds() (Point, Point)  { return span(r.Min, r.Max) }
func (t Text) Bounds() (Point, Point)  { return t.At, t.At }
func (c Circle) Bounds() (Point, Point) {
	r := Point{c.Radius, c.Radius}
	return c.Center.Sub(r), c.Center.Add(r)
}
func (p Path) Bounds() (Point, Point) {
	if len(p.Points) == 0 {
		return Point{}, Point{}
	}
	return span(p.Points...)
}

func span(pts ...Point) (Point, Point) {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// Frame is the drawable output of one render call.
type Frame struct {
	Width, Height float64
	Background    Color
	Items         []Primitive
}

func NewFrame(w, h float64) *Frame {
	return &Frame{Width: w, Height: h, Background: Background, Items: make([]Primitive, 0, 64)}
}

// Add appends p unless it carries non-finite coordinates.
func (f *Frame) Add(p Primitive) {
	lo, hi := p.Bounds()
	if !lo.Finite() || !hi.Finite() {
		return
	}
	if c, ok := p.(Circle); ok && !finite(c.Radius) {
		return
	}
	f.Items = append(f.Items, p)
}

func (f *Frame) Line(a, b Point, s Style) { f.Add(Line{From: a, To: b, Style: s}) }
func (f *Frame) Circle(c Point, r float64, s Style) {
	f.Add(Circle{Center: c, Radius: math.Abs(r), Style: s})
}
func (f *Frame) Rect(min, max Point, s Style) {
	lo, hi := span(min, max)
	f.Add(Rect{Min: lo, Max: hi, Style: s})
}
func (f *Frame) Arrow(a, b Point, head float64, s Style) {
	f.Add(Arrow{From: a, To: b, Head: head, Style: s})
}
func (f *Frame) Text(at Point, v string, size float64, s Style) {
	f.Add(Text{At: at, Value: v, Size: size, Style: s})
}

// Path copies pts so callers may reuse their buffers.
func (f *Frame) Path(pts []Point, closed bool, s Style) {
	if len(pts) < 2 {
		return
	}
	cp := make([]Point, len(pts))
	copy(cp, pts)
	f.Add(Path{Points: cp, Closed: closed, Style: s})
}

// Count returns the number of primitives accepted by match.
func (f *Frame) Count(match func(Primitive) bool) int {
	n := 0
	for _, it := range f.Items {
		if match(it) {
			n++
		}
	}
	return n
}

// Texts returns the values of every Text primitive, in order.
func (f *Frame) Texts() []string {
	var out []string
	for _, it := range f.Items {
		if t, ok := it.(Text); ok {
			out = append(out, t.Value)
		}
	}
	return out
}

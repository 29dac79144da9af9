package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/physlab/internal/scene"
)

// SceneToSVG renders a frame in its own logical coordinates.
func SceneToSVG(f *scene.Frame) string {
	if f == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">
`, num(f.Width), num(f.Height), num(f.Width), num(f.Height))

	grads := gradients(f)
	if len(grads) > 0 {
		sb.WriteString("<defs>\n")
		for i, g := range grads {
			x2, y2 := "1", "0"
			if g.Vertical {
				x2, y2 = "0", "1"
			}
			fmt.Fprintf(&sb, `<linearGradient id="g%d" x1="0" y1="0" x2="%s" y2="%s"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient>
`, i, x2, y2, g.From, g.To)
		}
		sb.WriteString("</defs>\n")
	}
	if f.Background != scene.None {
		fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s"/>
`, f.Background)
	}

	gradID := func(g *scene.Gradient) int {
		for i, h := range grads {
			if *h == *g {
				return i
			}
		}
		return -1
	}
	for _, it := range f.Items {
		writePrimitive(&sb, it, gradID)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func gradients(f *scene.Frame) []*scene.Gradient {
	var out []*scene.Gradient
	for _, it := range f.Items {
		g := styleOf(it).Gradient
		if g == nil {
			continue
		}
		seen := false
		for _, h := range out {
			if *h == *g {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, g)
		}
	}
	return out
}

func styleOf(p scene.Primitive) scene.Style {
	switch v := p.(type) {
	case scene.Line:
		return v.Style
	case scene.Circle:
		return v.Style
	case scene.Rect:
		return v.Style
	case scene.Path:
		return v.Style
	case scene.Arrow:
		return v.Style
	case scene.Text:
		return v.Style
	}
	return scene.Style{}
}

func writePrimitive(sb *strings.Builder, p scene.Primitive, gradID func(*scene.Gradient) int) {
	attrs := func(s scene.Style, filled bool) string {
		var a strings.Builder
		switch {
		case filled && s.Gradient != nil:
			fmt.Fprintf(&a, ` fill="url(#g%d)"`, gradID(s.Gradient))
		case filled && s.Fill != scene.None:
			fmt.Fprintf(&a, ` fill="%s"`, s.Fill)
		default:
			a.WriteString(` fill="none"`)
		}
		if s.Stroke != scene.None {
			w := s.Width
			if w <= 0 {
				w = 1
			}
			fmt.Fprintf(&a, ` stroke="%s" stroke-width="%s"`, s.Stroke, num(w))
		}
		if s.Dashed {
			a.WriteString(` stroke-dasharray="6 4"`)
		}
		if s.Opacity > 0 && s.Opacity < 1 {
			fmt.Fprintf(&a, ` opacity="%s"`, num(s.Opacity))
		}
		return a.String()
	}

	switch v := p.(type) {
	case scene.Line:
		fmt.Fprintf(sb, `<line x1="%s" y1="%s" x2="%s" y2="%s"%s/>
`, num(v.From.X), num(v.From.Y), num(v.To.X), num(v.To.Y), attrs(v.Style, false))
	case scene.Circle:
		fmt.Fprintf(sb, `<circle cx="%s" cy="%s" r="%s"%s/>
`, num(v.Center.X), num(v.Center.Y), num(v.Radius), attrs(v.Style, true))
	case scene.Rect:
		fmt.Fprintf(sb, `<rect x="%s" y="%s" width="%s" height="%s"%s/>
`, num(v.Min.X), num(v.Min.Y), num(v.Max.X-v.Min.X), num(v.Max.Y-v.Min.Y), attrs(v.Style, true))
	case scene.Path:
		tag := "polyline"
		if v.Closed {
			tag = "polygon"
		}
		fmt.Fprintf(sb, `<%s points="%s"%s/>
`, tag, points(v.Points), attrs(v.Style, v.Closed))
	case scene.Arrow:
		fmt.Fprintf(sb, `<line x1="%s" y1="%s" x2="%s" y2="%s"%s/>
`, num(v.From.X), num(v.From.Y), num(v.To.X), num(v.To.Y), attrs(v.Style, false))
		if head := v.HeadPoints(); head != nil {
			s := v.Style
			if s.Fill == scene.None {
				s.Fill = s.Stroke
			}
			fmt.Fprintf(sb, `<polygon points="%s"%s/>
`, points(head), attrs(s, true))
		}
	case scene.Text:
		size := v.Size
		if size <= 0 {
			size = 12
		}
		fill := v.Fill
		if fill == scene.None {
			fill = scene.Foreground
		}
		fmt.Fprintf(sb, `<text x="%s" y="%s" font-size="%s" fill="%s" font-family="monospace">%s</text>
`, num(v.At.X), num(v.At.Y), num(size), fill, html.EscapeString(v.Value))
	}
}

func points(pts []scene.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	if math.Abs(v) < 5e-3 {
		return "0"
	}
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// TrajectoryToSVG plots points scaled to fit width x height with 10% padding.
// Y grows upward.
func TrajectoryToSVG(pts []scene.Point, width, height int, strokeColor string) string {
	if len(pts) < 2 {
		return ""
	}

	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, scene.Background, strokeColor)

	for i, p := range pts {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}

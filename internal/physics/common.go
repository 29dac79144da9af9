package physics

import (
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	standardGravity = 9.81
	// refFPS converts per-frame smoothing factors into rates.
	refFPS = 60.0
)

var (
	bodyStyle   = scene.Style{Stroke: scene.Foreground, Width: 2}
	guideStyle  = scene.Style{Stroke: scene.Muted, Width: 1, Dashed: true}
	groundStyle = scene.Style{Stroke: scene.Muted, Width: 2}
	accentStyle = scene.Style{Stroke: scene.Accent, Width: 2}
	warmStyle   = scene.Style{Stroke: scene.Warm, Width: 2}
	trailStyle  = scene.Style{Stroke: scene.Accent, Width: 1, Opacity: 0.5}
	labelStyle  = scene.Style{Fill: scene.Foreground}
)

func spec(name, label, unit string, min, max, step, def float64) params.Spec {
	return params.Spec{Name: name, Label: label, Unit: unit, Min: min, Max: max, Step: step, Default: def}
}

func live(s params.Spec) params.Spec {
	s.Live = true
	return s
}

func ballFill(from, to scene.Color) scene.Style {
	return scene.Style{Stroke: scene.Foreground, Width: 1, Gradient: &scene.Gradient{From: from, To: to, Vertical: true}}
}

// readouts writes one text line per derived quantity, top-left.
func readouts(f *scene.Frame, d dynamo.Derived) {
	for i, q := range d {
		f.Text(scene.Pt(12, 20+float64(i)*16), q.String(), 12, labelStyle)
	}
}

func trail(f *scene.Frame, pts []scene.Point) {
	f.Path(pts, false, trailStyle)
}

// perFrame converts a per-frame relaxation factor into the equivalent factor
// for a step of dt seconds.
func perFrame(factor, dt float64) float64 {
	return 1 - math.Pow(1-factor, dt*refFPS)
}

// arrowHead scales the head to the shaft so short arrows stay readable.
func arrowHead(length float64) float64 {
	return math.Min(8, 0.4*length)
}

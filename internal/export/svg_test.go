package export

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/physlab/internal/registry"
	"github.com/san-kum/physlab/internal/scene"
)

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("malformed svg: %v\n%s", err, doc)
		}
	}
}

func TestSceneToSVGEveryCatalogEntry(t *testing.T) {
	r := registry.New()
	for _, id := range r.IDs() {
		t.Run(id, func(t *testing.T) {
			s, err := r.Build(id, nil)
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 30; i++ {
				s.Step(1.0 / 60)
			}
			doc := SceneToSVG(s.Render())
			if !strings.Contains(doc, "<svg") || !strings.HasSuffix(doc, "</svg>\n") {
				t.Fatal("missing svg envelope")
			}
			wellFormed(t, doc)
		})
	}
}

func TestSceneToSVGPrimitives(t *testing.T) {
	f := scene.NewFrame(200, 100)
	grad := scene.Gradient{From: scene.Warm, To: scene.Accent, Vertical: true}
	f.Circle(scene.Pt(50, 50), 10, scene.Style{Gradient: &grad})
	f.Circle(scene.Pt(80, 50), 10, scene.Style{Gradient: &grad})
	f.Rect(scene.Pt(10, 10), scene.Pt(30, 40), scene.Style{Fill: scene.Muted})
	f.Line(scene.Pt(0, 0), scene.Pt(200, 100), scene.Style{Stroke: scene.Foreground, Dashed: true})
	f.Path([]scene.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}, true, scene.Style{Fill: scene.Success, Opacity: 0.5})
	f.Arrow(scene.Pt(0, 50), scene.Pt(100, 50), 10, scene.Style{Stroke: scene.Accent})
	f.Text(scene.Pt(5, 95), "a < b & c", 10, scene.Style{})

	doc := SceneToSVG(f)
	wellFormed(t, doc)

	checks := []struct {
		frag string
		want int
	}{
		{"<linearGradient", 1},
		{`fill="url(#g0)"`, 2},
		{"<circle", 2},
		{`<rect x="10" y="10" width="20" height="30"`, 1},
		{`stroke-dasharray="6 4"`, 1},
		{"<polygon", 2},
		{`opacity="0.5"`, 1},
		{"a &lt; b &amp; c", 1},
		{`viewBox="0 0 200 100"`, 1},
	}
	for _, c := range checks {
		if got := strings.Count(doc, c.frag); got != c.want {
			t.Errorf("%q appears %d times, want %d", c.frag, got, c.want)
		}
	}
	if SceneToSVG(nil) != "" {
		t.Error("nil frame should give no svg")
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{0: "0", -0.001: "0", 100: "100", 10.5: "10.5", 1.234: "1.23", -2.5: "-2.5"}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	if TrajectoryToSVG([]scene.Point{{X: 1, Y: 1}}, 100, 100, "#fff") != "" {
		t.Error("single point should give no svg")
	}
	pts := []scene.Point{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 0}}
	doc := TrajectoryToSVG(pts, 120, 60, "#38bdf8")
	wellFormed(t, doc)
	if strings.Count(doc, " L") != 2 {
		t.Errorf("expected two line segments:\n%s", doc)
	}
	// x range 0..2 padded to -0.2..2.2, so the first point sits at 10/120 of the width.
	if !strings.Contains(doc, "d=\"M10.0,55.0") {
		t.Errorf("unexpected first point:\n%s", doc)
	}
}

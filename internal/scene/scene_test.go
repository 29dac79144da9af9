package scene

import (
	"math"
	"testing"
)

func TestTrailBounded(t *testing.T) {
	tr := NewTrail(3)
	for i := 0; i < 10; i++ {
		tr.Push(Pt(float64(i), 0))
	}
	if tr.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tr.Len())
	}
	pts := tr.Points()
	for i, want := range []float64{7, 8, 9} {
		if pts[i].X != want {
			t.Errorf("Points[%d].X = %v, want %v", i, pts[i].X, want)
		}
	}

	tr.Clear()
	if tr.Len() != 0 || len(tr.Points()) != 0 {
		t.Error("Clear left points behind")
	}
}

func TestTrailSkipsNonFinite(t *testing.T) {
	tr := NewTrail(4)
	tr.Push(Pt(math.NaN(), 1))
	tr.Push(Pt(1, math.Inf(1)))
	if tr.Len() != 0 {
		t.Errorf("non-finite points stored: %d", tr.Len())
	}
}

func TestFrameDropsNonFinite(t *testing.T) {
	f := NewFrame(100, 100)
	f.Line(Pt(0, 0), Pt(math.NaN(), 1), Style{})
	f.Circle(Pt(1, 1), math.Inf(1), Style{})
	f.Circle(Pt(1, 1), 2, Style{})
	if len(f.Items) != 1 {
		t.Errorf("Items = %d, want 1", len(f.Items))
	}
}

func TestFramePathCopies(t *testing.T) {
	f := NewFrame(10, 10)
	pts := []Point{{0, 0}, {1, 1}}
	f.Path(pts, false, Style{})
	pts[0].X = 99
	p := f.Items[0].(Path)
	if p.Points[0].X != 0 {
		t.Error("Path shares caller buffer")
	}
}

func TestBounds(t *testing.T) {
	lo, hi := Circle{Center: Pt(5, 5), Radius: 2}.Bounds()
	if lo != Pt(3, 3) || hi != Pt(7, 7) {
		t.Errorf("circle bounds = %v %v", lo, hi)
	}
	lo, hi = Path{Points: []Point{{3, 9}, {1, 2}, {4, 0}}}.Bounds()
	if lo != Pt(1, 0) || hi != Pt(4, 9) {
		t.Errorf("path bounds = %v %v", lo, hi)
	}
}

func TestArrowHeadPoints(t *testing.T) {
	head := Arrow{From: Pt(0, 0), To: Pt(10, 0), Head: 4}.HeadPoints()
	if len(head) != 3 {
		t.Fatalf("head = %v", head)
	}
	if head[0] != Pt(10, 0) {
		t.Errorf("tip = %v", head[0])
	}
	for _, p := range head[1:] {
		if math.Abs(p.X-6) > 1e-12 || math.Abs(math.Abs(p.Y)-2) > 1e-12 {
			t.Errorf("base corner = %v", p)
		}
	}
	if (Arrow{From: Pt(1, 1), To: Pt(1, 1), Head: 4}).HeadPoints() != nil {
		t.Error("zero-length arrow should have no head")
	}
}

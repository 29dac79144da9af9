package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/sim"
)

// Portrait is a two-variable trajectory taken from a recorded run.
type Portrait struct {
	XLabel, YLabel string
	Points         []scene.Point
}

// PhasePortrait pairs two state components of res by label. It returns nil
// when either label is missing.
func PhasePortrait(res *sim.Result, xLabel, yLabel string) *Portrait {
	xi, yi := labelIndex(res.Labels, xLabel), labelIndex(res.Labels, yLabel)
	if xi < 0 || yi < 0 {
		return nil
	}
	p := &Portrait{XLabel: xLabel, YLabel: yLabel, Points: make([]scene.Point, 0, len(res.Samples))}
	for _, s := range res.Samples {
		if xi < len(s.State) && yi < len(s.State) {
			p.Points = append(p.Points, scene.Pt(s.State[xi], s.State[yi]))
		}
	}
	return p
}

// QuantityPortrait pairs two derived quantities of res.
func QuantityPortrait(res *sim.Result, x, y string) *Portrait {
	p := &Portrait{XLabel: x, YLabel: y, Points: make([]scene.Point, 0, len(res.Samples))}
	for _, s := range res.Samples {
		xv, okx := s.Derived.Get(x)
		yv, oky := s.Derived.Get(y)
		if okx && oky {
			p.Points = append(p.Points, scene.Pt(xv, yv))
		}
	}
	return p
}

func labelIndex(labels []string, name string) int {
	for i, l := range labels {
		if l == name {
			return i
		}
	}
	return -1
}

// ASCII plots the portrait on a width×height character grid with axes
// where they cross the visible area.
func (portrait *Portrait) ASCII(width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}
	lo, hi := portrait.bounds()

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	col := func(x float64) int { return int((x - lo.X) / (hi.X - lo.X) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-lo.Y)/(hi.Y-lo.Y)*float64(height-1)) }
	inside := func(r, c int) bool { return r >= 0 && r < height && c >= 0 && c < width }

	for _, p := range portrait.Points {
		if r, c := row(p.Y), col(p.X); inside(r, c) {
			grid[r][c] = '•'
		}
	}
	if lo.X <= 0 && hi.X >= 0 {
		c := col(0)
		for r := range grid {
			if inside(r, c) && grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if lo.Y <= 0 && hi.Y >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if inside(r, c) && grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// bounds is the bounding box of the points padded by 10% per side. A flat
// extent is widened to 1 first.
func (portrait *Portrait) bounds() (lo, hi scene.Point) {
	lo, hi = portrait.Points[0], portrait.Points[0]
	for _, p := range portrait.Points[1:] {
		lo = scene.Pt(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
		hi = scene.Pt(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
	}
	span := hi.Sub(lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	pad := span.Scale(0.1)
	return lo.Sub(pad), hi.Add(pad)
}

package viz

import (
	"math"
	"strings"

	"github.com/san-kum/physlab/internal/scene"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  max(w, 1),
		Height: max(h, 1),
	}
	c.Grid = make([][]rune, c.Height)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, c.Width)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in sub-pixels.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set sets a pixel at (x, y) in sub-pixel coordinates. Out of range is ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a midpoint circle outline, or fills the disc.
func (c *Canvas) DrawCircle(cx, cy, r int, fill bool) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	if fill {
		for dy := -r; dy <= r; dy++ {
			w := int(math.Sqrt(float64(r*r - dy*dy)))
			for dx := -w; dx <= w; dx++ {
				c.Set(cx+dx, cy+dy)
			}
		}
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Rasterize draws f onto c, scaled uniformly to fit and centred. Text is
// not rasterised; hosts show readouts beside the canvas.
func Rasterize(c *Canvas, f *scene.Frame) {
	c.Clear()
	if f == nil || f.Width <= 0 || f.Height <= 0 {
		return
	}
	w, h := c.Dots()
	scale := math.Min(float64(w)/f.Width, float64(h)/f.Height)
	ox := (float64(w) - f.Width*scale) / 2
	oy := (float64(h) - f.Height*scale) / 2
	px := func(p scene.Point) (int, int) {
		return int(math.Round(ox + p.X*scale)), int(math.Round(oy + p.Y*scale))
	}
	line := func(a, b scene.Point) {
		x0, y0 := px(a)
		x1, y1 := px(b)
		c.DrawLine(x0, y0, x1, y1)
	}
	polyline := func(pts []scene.Point, closed bool) {
		for i := 1; i < len(pts); i++ {
			line(pts[i-1], pts[i])
		}
		if closed && len(pts) > 2 {
			line(pts[len(pts)-1], pts[0])
		}
	}

	for _, it := range f.Items {
		switch v := it.(type) {
		case scene.Line:
			line(v.From, v.To)
		case scene.Circle:
			x, y := px(v.Center)
			filled := v.Fill != scene.None || v.Gradient != nil
			c.DrawCircle(x, y, int(math.Round(v.Radius*scale)), filled)
		case scene.Rect:
			polyline([]scene.Point{v.Min, {X: v.Max.X, Y: v.Min.Y}, v.Max, {X: v.Min.X, Y: v.Max.Y}}, true)
		case scene.Path:
			polyline(v.Points, v.Closed)
		case scene.Arrow:
			line(v.From, v.To)
			if head := v.HeadPoints(); head != nil {
				polyline(head, true)
			}
		}
	}
}

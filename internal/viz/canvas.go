package viz

import (
	"math"
	"strings"

	"github.com/san-kum/gearsim/internal/body"
	"gonum.org/v1/gonum/spatial/r3"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a braille grid viewing the world's x-y plane from +z.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	scale         float64 // dots per world unit
	cx, cy        float64 // world point at the canvas centre
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h), scale: 8}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// set lights the dot at (x, y) in sub-cell coordinates.
func (c *Canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// Fit centres the view on points and scales it so all of them fit with a
// margin of pad world units.
func (c *Canvas) Fit(points []r3.Vec, pad float64) {
	if len(points) == 0 {
		return
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	c.cx, c.cy = (minX+maxX)/2, (minY+maxY)/2
	spanX := maxX - minX + 2*pad
	spanY := maxY - minY + 2*pad
	c.scale = math.Min(float64(c.Width*2)/spanX, float64(c.Height*4)/spanY)
}

func (c *Canvas) project(p r3.Vec) (int, int) {
	x := float64(c.Width) + (p.X-c.cx)*c.scale
	y := float64(c.Height*2) - (p.Y-c.cy)*c.scale
	return int(math.Round(x)), int(math.Round(y))
}

// Line draws a world-space segment with Bresenham's algorithm.
func (c *Canvas) Line(p, q r3.Vec) {
	x0, y0 := c.project(p)
	x1, y1 := c.project(q)
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.set(x0, y0)
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

// Wheel draws a body as a ring of radius r with two spokes along its local
// x and y axes, so rotation about any axis shows up in the projection.
func (c *Canvas) Wheel(b *body.Body, r float64) {
	const segments = 24
	prev := r3.Add(b.Position, r3.Vec{X: r})
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		next := r3.Add(b.Position, r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)})
		c.Line(prev, next)
		prev = next
	}
	for _, axis := range []r3.Vec{{X: r}, {Y: r}} {
		c.Line(b.Position, b.WorldPoint(axis))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Package viz renders body snapshots and metric histories for the
// terminal: a braille-dot canvas for the spatial view and asciigraph
// plots for time series.
package viz

import (
	"strings"

	"github.com/san-kum/gravlab/internal/body"
)

// Braille patterns pack 2x4 dots per character cell, unicode offset
// 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille character grid with a world-coordinate window.
// World y grows up, pixel y grows down.
type Canvas struct {
	Width, Height int
	grid          [][]rune

	// world window
	cx, cy float64
	scale  float64 // world units per pixel
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		grid:   make([][]rune, h),
		scale:  1,
	}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
}

// pixel dimensions (2 sub-pixels per column, 4 per row)
func (c *Canvas) pixelWidth() int  { return c.Width * 2 }
func (c *Canvas) pixelHeight() int { return c.Height * 4 }

// SetWindow centers the view on (cx, cy) with the given world units per
// pixel.
func (c *Canvas) SetWindow(cx, cy, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	c.cx, c.cy, c.scale = cx, cy, scale
}

// FitBodies picks a window that contains every body and its trail, with a
// little margin.
func (c *Canvas) FitBodies(bodies []*body.Body) {
	if len(bodies) == 0 {
		c.SetWindow(0, 0, 1)
		return
	}
	minX, maxX := bodies[0].Pos.X, bodies[0].Pos.X
	minY, maxY := bodies[0].Pos.Y, bodies[0].Pos.Y
	grow := func(x, y float64) {
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, b := range bodies {
		grow(b.Pos.X-b.Radius, b.Pos.Y-b.Radius)
		grow(b.Pos.X+b.Radius, b.Pos.Y+b.Radius)
		for _, p := range b.Trail {
			grow(p.X, p.Y)
		}
	}

	spanX := (maxX - minX) * 1.1
	spanY := (maxY - minY) * 1.1
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}
	scale := spanX / float64(c.pixelWidth())
	if s := spanY / float64(c.pixelHeight()); s > scale {
		scale = s
	}
	c.SetWindow((minX+maxX)/2, (minY+maxY)/2, scale)
}

// project maps world coordinates to pixel coordinates.
func (c *Canvas) project(x, y float64) (int, int) {
	px := int((x-c.cx)/c.scale) + c.pixelWidth()/2
	py := c.pixelHeight()/2 - int((y-c.cy)/c.scale)
	return px, py
}

func (c *Canvas) setPixel(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// line draws with Bresenham in pixel space.
func (c *Canvas) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
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

// DrawBodies renders trails as polylines and each body as a dot sized by
// its radius in the current window.
func (c *Canvas) DrawBodies(bodies []*body.Body) {
	for _, b := range bodies {
		for i := 1; i < len(b.Trail); i++ {
			x0, y0 := c.project(b.Trail[i-1].X, b.Trail[i-1].Y)
			x1, y1 := c.project(b.Trail[i].X, b.Trail[i].Y)
			c.line(x0, y0, x1, y1)
		}

		px, py := c.project(b.Pos.X, b.Pos.Y)
		r := int(b.Radius / c.scale)
		if r < 1 {
			r = 1
		}
		if r > 6 {
			r = 6
		}
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy <= r*r {
					c.setPixel(px+dx, py+dy)
				}
			}
		}
	}
}

func (c *Canvas) String() string {
	var sb strings.Builder
	for _, row := range c.grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

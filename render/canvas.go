package render

import (
	"math"
)

// Sub-cell resolution of the canvas: one terminal cell holds a 2x4 braille dot grid
const (
	DotsX = 2
	DotsY = 4
)

// Canvas is a dot-addressed drawing surface composited with source-over alpha
// Coordinates are in dots; (0,0) is the top-left dot, dot centers sit at +0.5
type Canvas struct {
	dots       []RGB
	lit        []bool
	width      int
	height     int
	background RGB
}

// NewCanvas creates a canvas of width x height dots cleared to background
func NewCanvas(width, height int, background RGB) *Canvas {
	c := &Canvas{background: background}
	c.Resize(width, height)
	return c
}

// Resize adjusts dot dimensions, reallocates only if capacity insufficient
func (c *Canvas) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	size := width * height
	if cap(c.dots) < size {
		c.dots = make([]RGB, size)
		c.lit = make([]bool, size)
	} else {
		c.dots = c.dots[:size]
		c.lit = c.lit[:size]
	}
	c.width = width
	c.height = height
	c.Clear()
}

// Size returns dimensions in dots
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// CellSize returns the number of terminal cells needed to display the canvas
func (c *Canvas) CellSize() (int, int) {
	return (c.width + DotsX - 1) / DotsX, (c.height + DotsY - 1) / DotsY
}

// Background returns the clear color
func (c *Canvas) Background() RGB {
	return c.background
}

// SetBackground changes the clear color, applied on next Clear
func (c *Canvas) SetBackground(bg RGB) {
	c.background = bg
}

// Clear resets all dots to background using exponential copy
func (c *Canvas) Clear() {
	if len(c.dots) == 0 {
		return
	}
	c.dots[0] = c.background
	c.lit[0] = false
	for filled := 1; filled < len(c.dots); filled *= 2 {
		copy(c.dots[filled:], c.dots[:filled])
	}
	for filled := 1; filled < len(c.lit); filled *= 2 {
		copy(c.lit[filled:], c.lit[:filled])
	}
}

// FillCircle composites a filled circle centered at (x, y)
// Every dot whose center lies within radius is blended; a circle smaller than a dot lights the dot containing its center
func (c *Canvas) FillCircle(x, y, radius float64, color RGB, alpha float64) {
	if radius <= 0 || alpha <= 0 {
		return
	}

	minX := max(int(math.Floor(x-radius)), 0)
	maxX := min(int(math.Ceil(x+radius)), c.width-1)
	minY := max(int(math.Floor(y-radius)), 0)
	maxY := min(int(math.Ceil(y+radius)), c.height-1)

	r2 := radius * radius
	covered := false
	for dy := minY; dy <= maxY; dy++ {
		cy := float64(dy) + 0.5 - y
		for dx := minX; dx <= maxX; dx++ {
			cx := float64(dx) + 0.5 - x
			if cx*cx+cy*cy > r2 {
				continue
			}
			c.blend(dx, dy, color, alpha)
			covered = true
		}
	}

	if !covered {
		c.blend(int(math.Floor(x)), int(math.Floor(y)), color, alpha)
	}
}

// At returns the dot color and whether anything was painted on it since last Clear
func (c *Canvas) At(x, y int) (RGB, bool) {
	if !c.inBounds(x, y) {
		return RGB{}, false
	}
	idx := y*c.width + x
	return c.dots[idx], c.lit[idx]
}

func (c *Canvas) blend(x, y int, color RGB, alpha float64) {
	if !c.inBounds(x, y) {
		return
	}
	idx := y*c.width + x
	c.dots[idx] = Blend(c.dots[idx], color, alpha)
	c.lit[idx] = true
}

// inBounds returns true if in canvas bounds
func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

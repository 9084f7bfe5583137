package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell represents a single terminal cell
type Cell struct {
	Rune  rune
	Fg    RGB
	Bg    RGB
	Attrs tcell.AttrMask
}

// CellBuffer is a row-major compositor of terminal cells with touched tracking
type CellBuffer struct {
	cells      []Cell
	touched    []bool
	width      int
	height     int
	background RGB
}

// NewCellBuffer creates a buffer with the specified dimensions
func NewCellBuffer(width, height int, background RGB) *CellBuffer {
	b := &CellBuffer{background: background}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocates only if capacity insufficient
func (b *CellBuffer) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
		b.touched = make([]bool, size)
	} else {
		b.cells = b.cells[:size]
		b.touched = b.touched[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Size returns buffer dimensions in cells
func (b *CellBuffer) Size() (int, int) {
	return b.width, b.height
}

// SetBackground changes the clear color, applied on next Clear
func (b *CellBuffer) SetBackground(bg RGB) {
	b.background = bg
}

// Clear resets all cells to empty using exponential copy
func (b *CellBuffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Rune: 0, Fg: b.background, Bg: b.background}
	b.touched[0] = false
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
	for filled := 1; filled < len(b.touched); filled *= 2 {
		copy(b.touched[filled:], b.touched[:filled])
	}
}

// inBounds returns true if in screen bounds
func (b *CellBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// cellAt returns the cell at (x, y); out of bounds returns the zero cell
func (b *CellBuffer) cellAt(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// isTouched reports whether the cell was written since last Clear
func (b *CellBuffer) isTouched(x, y int) bool {
	if !b.inBounds(x, y) {
		return false
	}
	return b.touched[y*b.width+x]
}

// Set writes a cell with explicit fg and bg colors (opaque replace)
func (b *CellBuffer) Set(x, y int, r rune, fg, bg RGB, attrs tcell.AttrMask) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	b.cells[idx] = Cell{Rune: r, Fg: fg, Bg: bg, Attrs: attrs}
	b.touched[idx] = true
}

// SetFgOnly writes rune, foreground, and attrs while preserving existing background
func (b *CellBuffer) SetFgOnly(x, y int, r rune, fg RGB, attrs tcell.AttrMask) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	dst := &b.cells[idx]
	dst.Rune = r
	dst.Fg = fg
	dst.Attrs = attrs
	b.touched[idx] = true
}

// SetText writes s starting at (x, y) preserving background, returns columns consumed
// Wide runes occupy two columns; the trailing column is blanked
func (b *CellBuffer) SetText(x, y int, s string, fg RGB, attrs tcell.AttrMask) int {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.SetFgOnly(col, y, r, fg, attrs)
		if w == 2 {
			b.SetFgOnly(col+1, y, 0, fg, attrs)
		}
		col += w
	}
	return col - x
}

// Flush writes the buffer to screen, call Show afterwards to present
func (b *CellBuffer) Flush(screen tcell.Screen) {
	for y := 0; y < b.height; y++ {
		row := b.cells[y*b.width : (y+1)*b.width]
		for x := range row {
			c := &row[x]
			r := c.Rune
			if r == 0 {
				// Trailing half of a wide rune is owned by the previous cell
				if x > 0 && runewidth.RuneWidth(row[x-1].Rune) == 2 {
					continue
				}
				r = ' '
			}
			style := tcell.StyleDefault.
				Foreground(c.Fg.Tcell()).
				Background(c.Bg.Tcell()).
				Attributes(c.Attrs)
			screen.SetContent(x, y, r, nil, style)
		}
	}
}

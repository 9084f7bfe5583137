package render

// brailleBase is U+2800, the empty braille pattern
const brailleBase = 0x2800

// brailleBits maps dot (dx, dy) within a cell to its braille pattern bit
var brailleBits = [DotsY][DotsX]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasLayer presents a Canvas as braille glyphs, one cell per 2x4 dots
// A cell's foreground is the per-channel maximum of its lit dots
type CanvasLayer struct {
	canvas *Canvas
}

// NewCanvasLayer creates a layer presenting canvas
func NewCanvasLayer(canvas *Canvas) *CanvasLayer {
	return &CanvasLayer{canvas: canvas}
}

// Render converts lit dots to braille cells; unlit cells keep the buffer background
func (l *CanvasLayer) Render(buf *CellBuffer) {
	cols, rows := l.canvas.CellSize()
	bufW, bufH := buf.Size()
	cols = min(cols, bufW)
	rows = min(rows, bufH)
	bg := l.canvas.Background()

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			var pattern rune
			var fg RGB
			for dy := 0; dy < DotsY; dy++ {
				for dx := 0; dx < DotsX; dx++ {
					color, lit := l.canvas.At(cx*DotsX+dx, cy*DotsY+dy)
					if !lit {
						continue
					}
					pattern |= brailleBits[dy][dx]
					fg = Max(fg, color)
				}
			}
			if pattern == 0 {
				continue
			}
			buf.Set(cx, cy, brailleBase+pattern, fg, bg, 0)
		}
	}
}

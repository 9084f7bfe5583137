package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Banner draws centered foreground text over the backdrop
type Banner struct {
	Title   string
	Tagline string
	TitleFg RGB
	TextFg  RGB
}

// IsVisible hides the banner when there is nothing to show
func (b *Banner) IsVisible() bool {
	return b.Title != "" || b.Tagline != ""
}

// Render writes title and tagline centered, tagline one blank row below title
func (b *Banner) Render(buf *CellBuffer) {
	w, h := buf.Size()
	if w == 0 || h == 0 {
		return
	}

	y := h/2 - 1
	if b.Title != "" {
		b.line(buf, w, y, b.Title, b.TitleFg, tcell.AttrBold)
	}
	if b.Tagline != "" {
		b.line(buf, w, y+2, b.Tagline, b.TextFg, tcell.AttrNone)
	}
}

func (b *Banner) line(buf *CellBuffer, width, y int, s string, fg RGB, attrs tcell.AttrMask) {
	s = runewidth.Truncate(s, width, "…")
	x := (width - runewidth.StringWidth(s)) / 2
	buf.SetText(x, y, s, fg, attrs)
}

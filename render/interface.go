package render

// Layer is implemented by anything with visual output composed into the cell buffer
type Layer interface {
	Render(buf *CellBuffer)
}

// VisibilityToggle is optionally implemented for runtime enable/disable
type VisibilityToggle interface {
	IsVisible() bool
}

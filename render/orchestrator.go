package render

import (
	"github.com/gdamore/tcell/v2"
)

type layerEntry struct {
	layer    Layer
	priority RenderPriority
	index    int // registration order for stable sort
}

// Orchestrator coordinates the presentation pipeline
type Orchestrator struct {
	screen   tcell.Screen
	buffer   *CellBuffer
	layers   []layerEntry
	regCount int
	frames   uint64
}

// NewOrchestrator creates an orchestrator sized to the screen
func NewOrchestrator(screen tcell.Screen, background RGB) *Orchestrator {
	w, h := screen.Size()
	return &Orchestrator{
		screen: screen,
		buffer: NewCellBuffer(w, h, background),
		layers: make([]layerEntry, 0, 4),
	}
}

// Register adds a layer at the specified priority. Maintains sorted order via insertion sort
func (o *Orchestrator) Register(l Layer, priority RenderPriority) {
	entry := layerEntry{
		layer:    l,
		priority: priority,
		index:    o.regCount,
	}
	o.regCount++

	pos := len(o.layers)
	for i, e := range o.layers {
		if priority < e.priority || (priority == e.priority && entry.index < e.index) {
			pos = i
			break
		}
	}

	o.layers = append(o.layers, layerEntry{})
	copy(o.layers[pos+1:], o.layers[pos:])
	o.layers[pos] = entry
}

// Buffer exposes the composition buffer
func (o *Orchestrator) Buffer() *CellBuffer {
	return o.buffer
}

// Frames returns the number of presented frames
func (o *Orchestrator) Frames() uint64 {
	return o.frames
}

// Present executes the pipeline: track screen size, clear, render all, flush, show
func (o *Orchestrator) Present() {
	w, h := o.screen.Size()
	if bw, bh := o.buffer.Size(); bw != w || bh != h {
		o.buffer.Resize(w, h)
		o.screen.Sync()
	}

	o.buffer.Clear()

	for _, entry := range o.layers {
		if vt, ok := entry.layer.(VisibilityToggle); ok && !vt.IsVisible() {
			continue
		}
		entry.layer.Render(o.buffer)
	}

	o.buffer.Flush(o.screen)
	o.screen.Show()
	o.frames++
}

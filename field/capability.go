package field

import (
	"github.com/lixenwraith/starfield/render"
)

// Surface is the 2D drawing target; coordinates and dimensions are in surface pixels
type Surface interface {
	// Resize sets pixel dimensions to track the viewport
	Resize(width, height int)
	// Size returns current pixel dimensions
	Size() (width, height int)
	// Clear erases the entire surface
	Clear()
	// FillCircle composites a filled circle with alpha
	FillCircle(x, y, radius float64, color render.RGB, alpha float64)
}

// FrameHandle identifies a pending frame request
type FrameHandle uint64

// Scheduler is the per-refresh scheduling primitive
// Each request runs its callback once, on the next refresh tick, unless cancelled
type Scheduler interface {
	RequestFrame(fn func()) FrameHandle
	CancelFrame(h FrameHandle)
}

// Viewport supplies current dimensions and resize notifications, in surface pixels
type Viewport interface {
	Size() (width, height int)
	// Subscribe registers fn for every resize; the returned func unsubscribes
	Subscribe(fn func(width, height int)) (unsubscribe func())
}

// Rand is the random source; *math/rand/v2.Rand satisfies it
type Rand interface {
	// Float64 returns a uniform value in [0.0, 1.0)
	Float64() float64
	// IntN returns a uniform value in [0, n)
	IntN(n int) int
}

// Package field implements a decorative particle field: a fixed-size set of
// softly drifting points repainted every refresh tick on a Surface.
//
// The renderer has two lifecycle states, Stopped and Running, with Start and
// Stop as the only transitions. Every collaborator (surface, scheduler,
// viewport, random source) is injected so a frame can be reproduced exactly.
//
// A renderer constructed without a surface is inert: nothing is allocated,
// nothing is scheduled and every operation is a silent no-op.
package field

import (
	"sync"
)

// State is the renderer lifecycle state
type State uint8

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Renderer owns the particle field and its frame cycle
type Renderer struct {
	mu sync.Mutex

	surface   Surface
	scheduler Scheduler
	rng       Rand
	params    Params

	particles []Particle
	width     float64
	height    float64

	state      State
	handle     FrameHandle
	pending    bool
	generation uint64 // invalidates callbacks dequeued before a Stop
	closed     bool

	unsubscribe func()
	frames      uint64
}

// New creates a stopped renderer; a nil surface yields an inert renderer
func New(surface Surface, scheduler Scheduler, rng Rand, params Params) *Renderer {
	return &Renderer{
		surface:   surface,
		scheduler: scheduler,
		rng:       rng,
		params:    params,
	}
}

// inert reports whether the renderer must not touch anything
// Caller must hold r.mu
func (r *Renderer) inert() bool {
	return r.surface == nil || r.closed
}

// Initialize replaces the field with a freshly randomized set sized for width x height
// Always reinitializes, even with unchanged dimensions
func (r *Renderer) Initialize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inert() {
		return
	}
	r.initializeLocked(width, height)
}

func (r *Renderer) initializeLocked(width, height int) {
	r.width = float64(width)
	r.height = float64(height)

	// No area to place particles in
	if width <= 0 || height <= 0 {
		r.particles = nil
		return
	}

	count := uniformInt(r.rng, r.params.Count)
	particles := make([]Particle, count)
	for i := range particles {
		particles[i] = spawn(r.rng, r.params, r.width, r.height)
	}
	r.particles = particles
}

// Resize tracks the viewport: resizes the surface then reinitializes the field
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inert() {
		return
	}
	r.surface.Resize(width, height)
	w, h := r.surface.Size()
	r.initializeLocked(w, h)
}

// SetParams replaces the draw ranges and reinitializes at the current size
func (r *Renderer) SetParams(p Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = p
	if r.inert() {
		return
	}
	r.initializeLocked(int(r.width), int(r.height))
}

// RenderFrame clears the surface then, per particle in order, paints at the
// current position and advances; a particle falling past the bottom wraps to
// the top at a new random column
func (r *Renderer) RenderFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inert() {
		return
	}
	r.renderLocked()
}

func (r *Renderer) renderLocked() {
	r.surface.Clear()

	color := r.params.Color
	for i := range r.particles {
		p := &r.particles[i]
		r.surface.FillCircle(p.X, p.Y, p.Radius, color, p.Opacity)

		p.Y += p.FallSpeed
		if p.Y > r.height {
			p.Y = 0
			p.X = r.rng.Float64() * r.width
		}
	}
	r.frames++
}

// Start begins rendering one frame per refresh tick until Stop
func (r *Renderer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inert() || r.scheduler == nil || r.state == Running {
		return
	}
	r.state = Running
	r.generation++
	r.requestLocked()
}

func (r *Renderer) requestLocked() {
	gen := r.generation
	r.handle = r.scheduler.RequestFrame(func() { r.onFrame(gen) })
	r.pending = true
}

// onFrame is the scheduled callback; stale generations are dropped
func (r *Renderer) onFrame(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		return
	}
	r.pending = false
	if r.state != Running || r.inert() {
		return
	}
	r.renderLocked()
	r.requestLocked()
}

// Stop halts the frame sequence; no frame renders after Stop returns
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Renderer) stopLocked() {
	if r.state != Running {
		return
	}
	r.state = Stopped
	r.generation++
	if r.pending {
		r.scheduler.CancelFrame(r.handle)
		r.pending = false
	}
}

// Mount subscribes to viewport resizes, sizes the field to the viewport and starts
func (r *Renderer) Mount(vp Viewport) {
	r.mu.Lock()
	if r.inert() || r.unsubscribe != nil {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	// Subscribe outside the lock: a notifier may call back synchronously
	unsubscribe := vp.Subscribe(r.Resize)

	r.mu.Lock()
	// Close may have run between the two lock sections
	if r.closed || r.unsubscribe != nil {
		r.mu.Unlock()
		unsubscribe()
		return
	}
	r.unsubscribe = unsubscribe
	r.mu.Unlock()

	r.Resize(vp.Size())
	r.Start()
}

// Close tears down: stops, unsubscribes and releases the field
// Later calls to any operation are no-ops
func (r *Renderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.stopLocked()
	r.closed = true
	r.particles = nil
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the lifecycle state
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Len returns the particle count
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.particles)
}

// Particles returns a snapshot copy of the field
func (r *Renderer) Particles() []Particle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Particle, len(r.particles))
	copy(out, r.particles)
	return out
}

// Frames returns the number of rendered frames
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

package field

import (
	"github.com/lixenwraith/starfield/render"
)

// surfaceOp is one recorded call against fakeSurface
type surfaceOp struct {
	kind         string // "clear" or "fill"
	x, y, radius float64
	color        render.RGB
	alpha        float64
}

// fakeSurface records every draw call
type fakeSurface struct {
	width, height int
	ops           []surfaceOp
	resizes       int
}

func (s *fakeSurface) Resize(w, h int) {
	s.width, s.height = w, h
	s.resizes++
}

func (s *fakeSurface) Size() (int, int) { return s.width, s.height }

func (s *fakeSurface) Clear() {
	s.ops = append(s.ops, surfaceOp{kind: "clear"})
}

func (s *fakeSurface) FillCircle(x, y, radius float64, color render.RGB, alpha float64) {
	s.ops = append(s.ops, surfaceOp{kind: "fill", x: x, y: y, radius: radius, color: color, alpha: alpha})
}

func (s *fakeSurface) fills() int {
	n := 0
	for _, op := range s.ops {
		if op.kind == "fill" {
			n++
		}
	}
	return n
}

// fakeScheduler queues frame requests until tick
type fakeScheduler struct {
	next      FrameHandle
	pending   map[FrameHandle]func()
	order     []FrameHandle
	requested int
	cancelled int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[FrameHandle]func())}
}

func (s *fakeScheduler) RequestFrame(fn func()) FrameHandle {
	s.next++
	s.pending[s.next] = fn
	s.order = append(s.order, s.next)
	s.requested++
	return s.next
}

func (s *fakeScheduler) CancelFrame(h FrameHandle) {
	if _, ok := s.pending[h]; ok {
		delete(s.pending, h)
		s.cancelled++
	}
}

// tick runs callbacks requested before this tick
func (s *fakeScheduler) tick() {
	order := s.order
	s.order = nil
	for _, h := range order {
		fn, ok := s.pending[h]
		if !ok {
			continue
		}
		delete(s.pending, h)
		fn()
	}
}

// fakeViewport delivers resizes synchronously
type fakeViewport struct {
	width, height int
	subs          map[int]func(int, int)
	nextID        int
}

func newFakeViewport(w, h int) *fakeViewport {
	return &fakeViewport{width: w, height: h, subs: make(map[int]func(int, int))}
}

func (v *fakeViewport) Size() (int, int) { return v.width, v.height }

func (v *fakeViewport) Subscribe(fn func(int, int)) func() {
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() { delete(v.subs, id) }
}

func (v *fakeViewport) resize(w, h int) {
	v.width, v.height = w, h
	for _, fn := range v.subs {
		fn(w, h)
	}
}

// scriptedRand replays fixed values, then repeats the last one
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	if len(r.floats) > 1 {
		r.floats = r.floats[1:]
	}
	return v
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	return v % n
}

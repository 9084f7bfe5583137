package field

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/starfield/render"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func assertInRanges(t *testing.T, p Params, particles []Particle, w, h float64) {
	t.Helper()
	for i, pt := range particles {
		require.GreaterOrEqual(t, pt.X, 0.0, "particle %d x", i)
		require.Less(t, pt.X, w, "particle %d x", i)
		require.GreaterOrEqual(t, pt.Y, 0.0, "particle %d y", i)
		require.Less(t, pt.Y, h, "particle %d y", i)
		require.GreaterOrEqual(t, pt.Radius, p.Radius.Min, "particle %d radius", i)
		require.Less(t, pt.Radius, p.Radius.Max, "particle %d radius", i)
		require.GreaterOrEqual(t, pt.FallSpeed, p.FallSpeed.Min, "particle %d fall speed", i)
		require.Less(t, pt.FallSpeed, p.FallSpeed.Max, "particle %d fall speed", i)
		require.GreaterOrEqual(t, pt.Opacity, p.Opacity.Min, "particle %d opacity", i)
		require.Less(t, pt.Opacity, p.Opacity.Max, "particle %d opacity", i)
	}
}

func TestInitialize_CountAndAttributeRanges(t *testing.T) {
	params := DefaultParams()
	surf := &fakeSurface{width: 800, height: 600}
	r := New(surf, newFakeScheduler(), seeded(1), params)

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		r.Initialize(800, 600)
		n := r.Len()
		require.GreaterOrEqual(t, n, 200)
		require.LessOrEqual(t, n, 350)
		seen[n] = true
		assertInRanges(t, params, r.Particles(), 800, 600)
	}
	assert.Greater(t, len(seen), 1, "count should vary across initializations")
}

func TestInitialize_CountBoundsInclusive(t *testing.T) {
	surf := &fakeSurface{}
	params := DefaultParams()

	low := New(surf, nil, &scriptedRand{ints: []int{0}, floats: []float64{0.5}}, params)
	low.Initialize(100, 100)
	assert.Equal(t, 200, low.Len())

	high := New(surf, nil, &scriptedRand{ints: []int{150}, floats: []float64{0.5}}, params)
	high.Initialize(100, 100)
	assert.Equal(t, 350, high.Len())
}

func TestResize_SameDimensionsReplacesField(t *testing.T) {
	params := DefaultParams()
	surf := &fakeSurface{}
	r := New(surf, newFakeScheduler(), seeded(7), params)

	r.Resize(320, 96)
	first := r.Particles()
	r.Resize(320, 96)
	second := r.Particles()

	assert.Equal(t, 2, surf.resizes)
	assert.NotEqual(t, first, second, "field must be replaced on every resize")
	assertInRanges(t, params, second, 320, 96)
}

func TestResize_UsesNewDimensions(t *testing.T) {
	params := DefaultParams()
	surf := &fakeSurface{}
	r := New(surf, newFakeScheduler(), seeded(3), params)

	r.Resize(1000, 1000)
	r.Resize(40, 20)

	w, h := surf.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)
	assertInRanges(t, params, r.Particles(), 40, 20)
}

func TestResize_ZeroArea(t *testing.T) {
	surf := &fakeSurface{}
	r := New(surf, newFakeScheduler(), seeded(3), DefaultParams())

	r.Resize(0, 0)
	assert.Equal(t, 0, r.Len())

	r.RenderFrame()
	require.Len(t, surf.ops, 1)
	assert.Equal(t, "clear", surf.ops[0].kind)
}

// singleParticle builds an 800x600 renderer holding exactly one given particle
func singleParticle(t *testing.T, p Particle, rng Rand) (*Renderer, *fakeSurface) {
	t.Helper()
	params := DefaultParams()
	params.Count = IntRange{Min: 1, Max: 1}
	surf := &fakeSurface{}
	r := New(surf, newFakeScheduler(), rng, params)
	r.Resize(800, 600)
	require.Equal(t, 1, r.Len())
	r.particles[0] = p
	surf.ops = nil
	return r, surf
}

func TestRenderFrame_Wraparound(t *testing.T) {
	start := Particle{X: 10, Y: 599.9, Radius: 1.5, FallSpeed: 0.2, Opacity: 0.5}
	rng := &scriptedRand{floats: []float64{0.25}}
	r, surf := singleParticle(t, start, rng)

	r.RenderFrame()

	require.Len(t, surf.ops, 2)
	assert.Equal(t, "clear", surf.ops[0].kind, "surface cleared before painting")
	paint := surf.ops[1]
	assert.Equal(t, "fill", paint.kind)
	assert.Equal(t, 10.0, paint.x, "painted at old position")
	assert.Equal(t, 599.9, paint.y, "painted at old position")
	assert.Equal(t, 1.5, paint.radius)
	assert.Equal(t, 0.5, paint.alpha)
	assert.Equal(t, render.RgbStar, paint.color)

	got := r.Particles()[0]
	assert.Equal(t, 0.0, got.Y)
	assert.Equal(t, 200.0, got.X, "new x drawn from [0, width)")
	assert.Equal(t, start.Radius, got.Radius)
	assert.Equal(t, start.FallSpeed, got.FallSpeed)
	assert.Equal(t, start.Opacity, got.Opacity)
}

func TestRenderFrame_NoWrapWhenLandingOnOrAboveBottom(t *testing.T) {
	cases := []struct {
		name string
		p    Particle
	}{
		{"mid field", Particle{X: 42, Y: 100, Radius: 1, FallSpeed: 0.15, Opacity: 0.4}},
		{"one pixel above bottom", Particle{X: 10, Y: 599, Radius: 1.5, FallSpeed: 0.2, Opacity: 0.5}},
		{"lands exactly on bottom", Particle{X: 7, Y: 599.75, Radius: 1, FallSpeed: 0.25, Opacity: 0.3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := singleParticle(t, tc.p, &scriptedRand{floats: []float64{0.9}})
			r.RenderFrame()

			got := r.Particles()[0]
			assert.Equal(t, tc.p.Y+tc.p.FallSpeed, got.Y)
			assert.Equal(t, tc.p.X, got.X)
		})
	}
}

func TestRenderFrame_PaintsEveryParticleInOrder(t *testing.T) {
	surf := &fakeSurface{}
	r := New(surf, newFakeScheduler(), seeded(11), DefaultParams())
	r.Resize(200, 120)
	before := r.Particles()
	surf.ops = nil

	r.RenderFrame()

	require.Len(t, surf.ops, len(before)+1)
	assert.Equal(t, "clear", surf.ops[0].kind)
	for i, p := range before {
		op := surf.ops[i+1]
		assert.Equal(t, p.X, op.x)
		assert.Equal(t, p.Y, op.y)
	}
	for _, p := range r.Particles() {
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 120.0)
	}
}

func TestStartStop_FrameSequence(t *testing.T) {
	surf := &fakeSurface{}
	sched := newFakeScheduler()
	r := New(surf, sched, seeded(5), DefaultParams())
	r.Resize(160, 96)
	n := r.Len()

	assert.Equal(t, Stopped, r.State())
	r.Start()
	assert.Equal(t, Running, r.State())
	r.Start()
	assert.Equal(t, 1, sched.requested, "second Start is a no-op")

	for i := 0; i < 3; i++ {
		sched.tick()
	}
	assert.Equal(t, uint64(3), r.Frames())
	assert.Equal(t, 3*n, surf.fills())

	r.Stop()
	assert.Equal(t, Stopped, r.State())
	assert.Empty(t, sched.pending, "outstanding frame cancelled")

	fills := surf.fills()
	for i := 0; i < 10; i++ {
		sched.tick()
	}
	assert.Equal(t, fills, surf.fills(), "no paint after stop")
	assert.Equal(t, uint64(3), r.Frames())
}

func TestStop_DropsAlreadyDequeuedCallback(t *testing.T) {
	surf := &fakeSurface{}
	sched := newFakeScheduler()
	r := New(surf, sched, seeded(5), DefaultParams())
	r.Resize(80, 48)
	r.Start()

	// Callback already taken off the queue by the host when Stop lands
	require.Len(t, sched.pending, 1)
	var fn func()
	for _, f := range sched.pending {
		fn = f
	}
	r.Stop()
	fn()

	assert.Equal(t, uint64(0), r.Frames())
	assert.Equal(t, 0, surf.fills())
}

func TestStart_AfterStopResumes(t *testing.T) {
	surf := &fakeSurface{}
	sched := newFakeScheduler()
	r := New(surf, sched, seeded(5), DefaultParams())
	r.Resize(80, 48)

	r.Start()
	sched.tick()
	r.Stop()
	r.Start()
	sched.tick()
	sched.tick()

	assert.Equal(t, uint64(3), r.Frames())
}

func TestInert_NoSurface(t *testing.T) {
	sched := newFakeScheduler()
	vp := newFakeViewport(800, 600)
	r := New(nil, sched, panicRand{}, DefaultParams())

	assert.NotPanics(t, func() {
		r.Initialize(800, 600)
		r.Resize(800, 600)
		r.Start()
		r.RenderFrame()
		r.Mount(vp)
		r.SetParams(DefaultParams())
		r.Stop()
		r.Close()
	})

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, sched.requested, "inert renderer never schedules")
	assert.Empty(t, vp.subs, "inert renderer never subscribes")
	assert.Equal(t, Stopped, r.State())
}

func TestMount_ResizeAndClose(t *testing.T) {
	params := DefaultParams()
	surf := &fakeSurface{}
	sched := newFakeScheduler()
	vp := newFakeViewport(800, 600)
	r := New(surf, sched, seeded(9), params)

	r.Mount(vp)
	assert.Equal(t, Running, r.State())
	assert.Len(t, vp.subs, 1)
	w, h := surf.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assertInRanges(t, params, r.Particles(), 800, 600)

	sched.tick()
	vp.resize(120, 40)
	w, h = surf.Size()
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, h)
	assertInRanges(t, params, r.Particles(), 120, 40)

	// Next frame runs against the new field and dimensions
	sched.tick()
	for _, p := range r.Particles() {
		assert.Less(t, p.X, 120.0)
		assert.LessOrEqual(t, p.Y, 40.0)
	}

	r.Close()
	assert.Equal(t, Stopped, r.State())
	assert.Empty(t, vp.subs)
	assert.Equal(t, 0, r.Len())

	fills := surf.fills()
	for i := 0; i < 5; i++ {
		sched.tick()
	}
	r.Resize(640, 480)
	r.RenderFrame()
	r.Start()
	assert.Equal(t, fills, surf.fills(), "no paint after teardown")
	assert.Equal(t, 0, r.Len(), "no allocation after teardown")
	assert.Empty(t, sched.pending)
}

// closingViewport tears the renderer down while Mount is subscribing
type closingViewport struct {
	*fakeViewport
	r *Renderer
}

func (v *closingViewport) Subscribe(fn func(int, int)) func() {
	unsubscribe := v.fakeViewport.Subscribe(fn)
	v.r.Close()
	return unsubscribe
}

func TestMount_CloseDuringSubscribeReleasesSubscription(t *testing.T) {
	surf := &fakeSurface{}
	sched := newFakeScheduler()
	r := New(surf, sched, seeded(4), DefaultParams())
	vp := &closingViewport{fakeViewport: newFakeViewport(800, 600), r: r}

	r.Mount(vp)

	assert.Empty(t, vp.subs, "subscription must not outlive Close")
	assert.Equal(t, Stopped, r.State())
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, sched.pending)
	assert.Equal(t, 0, surf.fills())
}

func TestMount_SecondMountIsNoop(t *testing.T) {
	r := New(&fakeSurface{}, newFakeScheduler(), seeded(5), DefaultParams())
	vp := newFakeViewport(100, 100)

	r.Mount(vp)
	r.Mount(vp)
	assert.Len(t, vp.subs, 1)
}

func TestSetParams_Reinitializes(t *testing.T) {
	surf := &fakeSurface{}
	r := New(surf, newFakeScheduler(), seeded(2), DefaultParams())
	r.Resize(100, 50)

	p := DefaultParams()
	p.Count = IntRange{Min: 5, Max: 5}
	p.Color = render.RGB{R: 255}
	r.SetParams(p)
	assert.Equal(t, 5, r.Len())

	surf.ops = nil
	r.RenderFrame()
	assert.Equal(t, p.Color, surf.ops[1].color)
}

func TestParamsValidate(t *testing.T) {
	ok := DefaultParams()
	require.NoError(t, ok.Validate())

	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"count inverted", func(p *Params) { p.Count = IntRange{Min: 10, Max: 5} }},
		{"count negative", func(p *Params) { p.Count.Min = -1 }},
		{"radius empty", func(p *Params) { p.Radius = FloatRange{Min: 2, Max: 2} }},
		{"radius zero", func(p *Params) { p.Radius.Min = 0 }},
		{"speed inverted", func(p *Params) { p.FallSpeed = FloatRange{Min: 0.3, Max: 0.1} }},
		{"opacity above one", func(p *Params) { p.Opacity.Max = 1.5 }},
		{"opacity NaN", func(p *Params) { p.Opacity.Min = math.NaN() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestUniform_NeverReachesMax(t *testing.T) {
	top := math.Nextafter(1, 0)
	rng := &scriptedRand{floats: []float64{top}}
	r := FloatRange{Min: 0.05, Max: 0.2}
	for i := 0; i < 3; i++ {
		v := uniform(rng, r)
		assert.Less(t, v, r.Max)
		assert.GreaterOrEqual(t, v, r.Min)
	}
}

// panicRand fails the test if any draw is made
type panicRand struct{}

func (panicRand) Float64() float64 { panic("unexpected random draw") }
func (panicRand) IntN(int) int     { panic("unexpected random draw") }

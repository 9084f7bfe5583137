package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/core"
	"github.com/lixenwraith/starfield/field"
)

// Loop is the display-refresh scheduler: a single goroutine ticking at a fixed interval
// Frame callbacks requested during tick N run on tick N+1, never overlapping
// Posted tasks run on the same goroutine ahead of frame callbacks
type Loop struct {
	interval time.Duration
	log      *zap.Logger

	mu         sync.Mutex
	nextHandle field.FrameHandle
	frames     map[field.FrameHandle]func()
	order      []field.FrameHandle
	tasks      []func()
	onFrameEnd func()

	tickCount atomic.Uint64

	// Control: ctrl serializes Start/Stop, each run gets its own stop channel
	ctrl     sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool
}

var _ field.Scheduler = (*Loop)(nil)

// NewLoop creates a stopped loop ticking every interval
func NewLoop(interval time.Duration, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		interval: interval,
		log:      log,
		frames:   make(map[field.FrameHandle]func()),
	}
}

// RequestFrame schedules fn once on the next tick
func (l *Loop) RequestFrame(fn func()) field.FrameHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextHandle++
	h := l.nextHandle
	l.frames[h] = fn
	l.order = append(l.order, h)
	return h
}

// CancelFrame removes a pending request; unknown or already-run handles are ignored
func (l *Loop) CancelFrame(h field.FrameHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.frames, h)
}

// Post queues fn to run on the loop goroutine before the next tick's frame callbacks
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tasks = append(l.tasks, fn)
}

// OnFrameEnd sets the presentation hook run after each tick's callbacks
func (l *Loop) OnFrameEnd(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onFrameEnd = fn
}

// Pending returns the number of outstanding frame requests
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// Ticks returns the number of completed ticks
func (l *Loop) Ticks() uint64 {
	return l.tickCount.Load()
}

// Tick runs one refresh synchronously: posted tasks, frame callbacks, then the frame-end hook
func (l *Loop) Tick() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	order := l.order
	l.order = nil
	end := l.onFrameEnd
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}

	// Look up each handle at run time so a cancel issued by an earlier callback still applies
	for _, h := range order {
		l.mu.Lock()
		fn, ok := l.frames[h]
		delete(l.frames, h)
		l.mu.Unlock()
		if ok {
			fn()
		}
	}

	if end != nil {
		end()
	}
	l.tickCount.Add(1)
}

// Start begins ticking on a dedicated goroutine; no-op while running
// A stopped loop may be started again
func (l *Loop) Start() {
	l.ctrl.Lock()
	defer l.ctrl.Unlock()
	if l.running.Load() {
		return
	}
	stop := make(chan struct{})
	l.stopChan = stop
	l.running.Store(true)
	l.wg.Add(1)
	core.Go(func() { l.run(stop) })
	l.log.Debug("frame loop started", zap.Duration("interval", l.interval))
}

// Stop halts ticking and waits for the in-flight tick to finish; no-op unless running
func (l *Loop) Stop() {
	l.ctrl.Lock()
	defer l.ctrl.Unlock()
	if !l.running.Load() {
		return
	}
	l.running.Store(false)
	close(l.stopChan)
	l.wg.Wait()
	l.log.Debug("frame loop stopped", zap.Uint64("ticks", l.tickCount.Load()))
}

func (l *Loop) run(stop <-chan struct{}) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Stop wins over a tick that became ready at the same time
			select {
			case <-stop:
				return
			default:
			}
			l.Tick()
		}
	}
}

package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// PumpOptions configures an EventPump
type PumpOptions struct {
	// ScaleX/ScaleY convert cells to surface pixels; zero means 1
	ScaleX, ScaleY int
	// Exec runs subscriber callbacks; nil runs them on the pump goroutine
	Exec func(func())
	// Debounce coalesces resize bursts; zero delivers every resize
	Debounce time.Duration
	Log      *zap.Logger
}

// EventPump polls screen events: resizes fan out to subscribers, quit keys close Done
type EventPump struct {
	screen tcell.Screen
	opts   PumpOptions
	log    *zap.Logger

	mu     sync.Mutex
	subs   map[int]func(width, height int)
	nextID int
	cols   int
	rows   int
	timer  *time.Timer

	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// NewEventPump creates a pump for screen; call Start to begin polling
func NewEventPump(screen tcell.Screen, opts PumpOptions) *EventPump {
	if opts.ScaleX <= 0 {
		opts.ScaleX = 1
	}
	if opts.ScaleY <= 0 {
		opts.ScaleY = 1
	}
	if opts.Exec == nil {
		opts.Exec = func(fn func()) { fn() }
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	cols, rows := screen.Size()
	return &EventPump{
		screen: screen,
		opts:   opts,
		log:    log,
		subs:   make(map[int]func(int, int)),
		cols:   cols,
		rows:   rows,
		done:   make(chan struct{}),
	}
}

// Size returns the viewport in surface pixels
func (p *EventPump) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cols * p.opts.ScaleX, p.rows * p.opts.ScaleY
}

// Subscribe registers fn for resize notifications in surface pixels
func (p *EventPump) Subscribe(fn func(width, height int)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Done is closed when the user asks to quit or the screen closes
func (p *EventPump) Done() <-chan struct{} {
	return p.done
}

// Quit closes Done; safe to call multiple times
func (p *EventPump) Quit() {
	p.doneOnce.Do(func() { close(p.done) })
}

// Start polls events on a dedicated goroutine until the screen is finalized
func (p *EventPump) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// Poller touches the terminal directly, restore it before dying
		defer func() {
			if r := recover(); r != nil {
				EmergencyReset(os.Stdout)
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()

		for {
			ev := p.screen.PollEvent()
			// nil after Fini
			if ev == nil {
				p.Quit()
				return
			}
			p.handle(ev)
		}
	}()
}

// Wait blocks until the polling goroutine exits
func (p *EventPump) Wait() {
	p.wg.Wait()
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()
}

// handle dispatches one event
func (p *EventPump) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		p.resize(cols, rows)
	case *tcell.EventKey:
		if isQuitKey(ev) {
			p.log.Debug("quit requested")
			p.Quit()
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

func (p *EventPump) resize(cols, rows int) {
	p.mu.Lock()
	p.cols, p.rows = cols, rows

	if p.opts.Debounce <= 0 {
		p.mu.Unlock()
		p.dispatch()
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.opts.Debounce, p.dispatch)
	p.mu.Unlock()
}

// dispatch hands the current size to every subscriber through Exec
func (p *EventPump) dispatch() {
	p.mu.Lock()
	w, h := p.cols*p.opts.ScaleX, p.rows*p.opts.ScaleY
	subs := make([]func(int, int), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	p.log.Debug("viewport resized", zap.Int("width", w), zap.Int("height", h), zap.Int("subscribers", len(subs)))

	p.opts.Exec(func() {
		for _, fn := range subs {
			fn(w, h)
		}
	})
}

package propbind

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Dispatcher runs destination writes on a designated execution context, the
// equivalent of a UI-confined thread.
type Dispatcher interface {
	// Current reports whether the caller is already running on the
	// dispatcher's context.
	Current() bool
	// Async schedules fn on the dispatcher without waiting for it.
	Async(fn func())
	// Sync runs fn on the dispatcher and blocks until it returns.
	Sync(fn func())
}

// Immediate is a Dispatcher that runs every function inline on the calling
// goroutine, for callers whose destination writes need no confinement.
type Immediate struct{}

func (Immediate) Current() bool   { return true }
func (Immediate) Async(fn func()) { fn() }
func (Immediate) Sync(fn func())  { fn() }

// Loop is a single-goroutine Dispatcher with a FIFO queue. Functions
// dispatched from the loop's own goroutine run inline rather than
// deadlocking on the queue.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	gid    atomic.Int64
	cancel context.CancelFunc
}

// NewLoop creates a loop. It processes nothing until Run or Start is called.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Run processes queued functions on the calling goroutine until ctx is done,
// then drains whatever is still queued and returns.
func (l *Loop) Run(ctx context.Context) {
	l.gid.Store(goid())
	defer l.gid.Store(0)
	for {
		l.drain()
		select {
		case <-ctx.Done():
			l.drain()
			return
		case <-l.wake:
		}
	}
}

// Start runs the loop on a background goroutine until Stop is called.
// Calling Start on a loop that is already running has no effect.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go l.Run(ctx)
}

// Stop ends a loop started with Start. Pending functions are drained before
// the loop goroutine exits.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Current reports whether the caller is running on the loop goroutine.
func (l *Loop) Current() bool {
	gid := l.gid.Load()
	return gid != 0 && gid == goid()
}

// Async enqueues fn and returns without waiting for it to run.
func (l *Loop) Async(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Sync runs fn on the loop and waits for it to finish. Called from the loop
// goroutine itself, fn runs inline.
func (l *Loop) Sync(fn func()) {
	if l.Current() {
		fn()
		return
	}
	done := make(chan struct{})
	l.Async(func() {
		defer close(done)
		fn()
	})
	<-done
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
	}
}

var (
	mainLoopOnce sync.Once
	mainLoop     *Loop
)

// MainLoop returns the default dispatcher for bindings: a lazily started
// process-wide loop standing in for the UI thread.
func MainLoop() *Loop {
	mainLoopOnce.Do(func() {
		mainLoop = NewLoop()
		mainLoop.Start()
	})
	return mainLoop
}

// goid returns the id of the calling goroutine, parsed from the first stack
// trace line ("goroutine N [running]:").
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

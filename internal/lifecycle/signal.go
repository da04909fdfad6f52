package lifecycle

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler reacts to a delivered signal.
type Handler func(sig os.Signal)

// InterruptRouter forwards process signals to the currently installed
// Handler. Installing a handler hands back the one it replaces so the new
// handler can chain to it.
type InterruptRouter struct {
	signals []os.Signal

	mu      sync.Mutex
	handler Handler

	ch   chan os.Signal
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewInterruptRouter routes signals, SIGINT and SIGTERM when none are given.
func NewInterruptRouter(signals ...os.Signal) *InterruptRouter {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return &InterruptRouter{signals: signals}
}

// Install makes h the current handler and returns the previous one, which
// is nil if nothing was installed.
func (r *InterruptRouter) Install(h Handler) Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.handler
	r.handler = h
	return prev
}

// Start subscribes to the process signals. Calling Start twice is a no-op.
func (r *InterruptRouter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		return
	}
	r.ch = make(chan os.Signal, 1)
	r.stop = make(chan struct{})
	signal.Notify(r.ch, r.signals...)

	r.wg.Add(1)
	go func(ch <-chan os.Signal, stop <-chan struct{}) {
		defer r.wg.Done()
		for {
			select {
			case sig := <-ch:
				r.dispatch(sig)
			case <-stop:
				return
			}
		}
	}(r.ch, r.stop)
}

// Stop unsubscribes from the process signals and waits for the dispatcher
// to exit.
func (r *InterruptRouter) Stop() {
	r.mu.Lock()
	if r.ch == nil {
		r.mu.Unlock()
		return
	}
	signal.Stop(r.ch)
	close(r.stop)
	r.ch = nil
	r.mu.Unlock()
	r.wg.Wait()
}

// dispatch runs the current handler outside the lock so a handler may
// itself install another one.
func (r *InterruptRouter) dispatch(sig os.Signal) {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h != nil {
		h(sig)
	}
}

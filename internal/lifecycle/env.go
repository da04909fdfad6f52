package lifecycle

import "sync/atomic"

// Env is the per-thread environment handed to a loop entry point.
type Env struct {
	name string
	quit atomic.Bool
}

// NewEnv returns an environment that is not cancelled.
func NewEnv(name string) *Env {
	return &Env{name: name}
}

// Name returns the thread name the environment was created for.
func (e *Env) Name() string { return e.name }

// Cancel requests the loop to stop. It only ever moves false to true.
func (e *Env) Cancel() { e.quit.Store(true) }

// Cancelled reports whether Cancel was called.
func (e *Env) Cancelled() bool { return e.quit.Load() }

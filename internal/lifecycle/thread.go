package lifecycle

import (
	"errors"
	"fmt"
	"runtime"
)

// EntryFunc is a loop body. It owns its devices for its whole lifetime and
// returns nil on a cancelled exit.
type EntryFunc func(env *Env) error

// LaunchFunc starts an entry point on its own thread.
type LaunchFunc func(name string, class SchedClass, entry EntryFunc, env *Env) (*Thread, error)

// setScheduler is replaced in tests.
var setScheduler = applySchedClass

// Thread is a running loop.
type Thread struct {
	name  string
	class SchedClass
	done  chan struct{}
	err   error
}

// Launch runs entry(env) on a dedicated OS thread scheduled under class.
// If the class cannot be applied the entry never runs and Launch fails.
func Launch(name string, class SchedClass, entry EntryFunc, env *Env) (*Thread, error) {
	if entry == nil || env == nil {
		return nil, fmt.Errorf("%w: launch %s: missing entry or environment", ErrSetup, name)
	}

	t := &Thread{name: name, class: class, done: make(chan struct{})}
	started := make(chan error, 1)

	go func() {
		// Never unlocked: the thread carries the scheduling class and
		// is discarded by the runtime when the goroutine returns.
		runtime.LockOSThread()
		defer close(t.done)

		if err := setScheduler(class); err != nil {
			started <- err
			return
		}
		started <- nil
		t.err = entry(env)
	}()

	if err := <-started; err != nil {
		<-t.done
		return nil, fmt.Errorf("%w: launch %s thread: %w", ErrSetup, name, err)
	}
	return t, nil
}

// Join waits for the thread to return and yields the entry's status.
func (t *Thread) Join() error {
	<-t.done
	return t.err
}

// Name returns the thread name.
func (t *Thread) Name() string { return t.name }

// Class returns the scheduling class the thread runs under.
func (t *Thread) Class() SchedClass { return t.class }

// exitStatus folds a thread's return value into the process exit status.
func exitStatus(err error) int {
	if errors.Is(err, ErrSetup) {
		return ExitFailure
	}
	return ExitSuccess
}

package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubScheduler replaces the scheduling call for the duration of a test.
func stubScheduler(t *testing.T, fn func(SchedClass) error) {
	t.Helper()
	orig := setScheduler
	setScheduler = fn
	t.Cleanup(func() { setScheduler = orig })
}

func noSched(SchedClass) error { return nil }

// waitCancelled is a loop body that spins until its flag is set.
func waitCancelled(env *Env) error {
	for !env.Cancelled() {
		time.Sleep(time.Millisecond)
	}
	return nil
}

func TestEnvCancel(t *testing.T) {
	env := NewEnv("video")
	if env.Name() != "video" {
		t.Errorf("Name() = %q, want %q", env.Name(), "video")
	}
	if env.Cancelled() {
		t.Fatal("new env is cancelled")
	}
	env.Cancel()
	env.Cancel()
	if !env.Cancelled() {
		t.Fatal("env not cancelled after Cancel")
	}
}

func TestSchedClassString(t *testing.T) {
	tests := []struct {
		class SchedClass
		want  string
	}{
		{SchedDefault, "default"},
		{SchedRealTimeHighest, "realtime-highest"},
		{SchedClass(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("SchedClass(%d).String() = %q, want %q", int(tt.class), got, tt.want)
		}
	}
}

func TestLaunchRunsEntry(t *testing.T) {
	var applied SchedClass = -1
	stubScheduler(t, func(c SchedClass) error {
		applied = c
		return nil
	})

	want := fmt.Errorf("%w: dequeue", ErrIO)
	th, err := Launch("video", SchedRealTimeHighest, func(*Env) error { return want }, NewEnv("video"))
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if got := th.Join(); !errors.Is(got, ErrIO) {
		t.Errorf("Join() = %v, want ErrIO", got)
	}
	if applied != SchedRealTimeHighest {
		t.Errorf("applied class = %v, want %v", applied, SchedRealTimeHighest)
	}
	if th.Name() != "video" || th.Class() != SchedRealTimeHighest {
		t.Errorf("thread = %s/%s", th.Name(), th.Class())
	}
}

func TestLaunchSchedulingFailure(t *testing.T) {
	stubScheduler(t, func(SchedClass) error { return errors.New("operation not permitted") })

	var ran atomic.Bool
	th, err := Launch("audio", SchedRealTimeHighest, func(*Env) error {
		ran.Store(true)
		return nil
	}, NewEnv("audio"))

	if err == nil {
		t.Fatal("expected launch failure")
	}
	if !errors.Is(err, ErrSetup) {
		t.Errorf("Launch() error = %v, want ErrSetup", err)
	}
	if th != nil {
		t.Error("Launch() returned a thread on failure")
	}
	if ran.Load() {
		t.Error("entry ran although the scheduling class could not be applied")
	}
}

func TestLaunchMissingEntry(t *testing.T) {
	if _, err := Launch("video", SchedDefault, nil, NewEnv("video")); !errors.Is(err, ErrSetup) {
		t.Errorf("Launch(nil entry) error = %v, want ErrSetup", err)
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"clean", nil, ExitSuccess},
		{"io failure", fmt.Errorf("%w: VIDIOC_DQBUF", ErrIO), ExitSuccess},
		{"setup failure", fmt.Errorf("open capture: %w", ErrSetup), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitStatus(tt.err); got != tt.want {
				t.Errorf("exitStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestInterruptRouterChaining(t *testing.T) {
	r := NewInterruptRouter()

	var calls []string
	if prev := r.Install(func(os.Signal) { calls = append(calls, "first") }); prev != nil {
		t.Fatal("first Install returned a previous handler")
	}

	var prev Handler
	prev = r.Install(func(sig os.Signal) {
		calls = append(calls, "second")
		if prev != nil {
			prev(sig)
		}
	})
	if prev == nil {
		t.Fatal("second Install did not return the first handler")
	}

	r.dispatch(os.Interrupt)
	if len(calls) != 2 || calls[0] != "second" || calls[1] != "first" {
		t.Errorf("calls = %v, want [second first]", calls)
	}
}

func TestInterruptRouterNoHandler(t *testing.T) {
	r := NewInterruptRouter()
	r.dispatch(os.Interrupt) // must not panic
}

func TestInterruptRouterStartStopIdempotent(t *testing.T) {
	r := NewInterruptRouter()
	r.Start()
	r.Start()
	r.Stop()
	r.Stop()
}

func TestManagerInterruptStopsBothLoops(t *testing.T) {
	stubScheduler(t, noSched)
	router := NewInterruptRouter()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var chained atomic.Bool
	router.Install(func(os.Signal) { chained.Store(true) })

	var m *Manager
	m = NewManager(waitCancelled, waitCancelled,
		WithRouter(router),
		WithHooks(Hooks{
			BeforeLaunch: func() { record("before") },
			AfterLaunch: func() {
				record("after-launch")
				router.dispatch(os.Interrupt)
			},
			OnInterrupt: func(os.Signal) {
				if !m.VideoEnv().Cancelled() || !m.AudioEnv().Cancelled() {
					t.Error("OnInterrupt ran before both loops were cancelled")
				}
				record("interrupt")
			},
			OnThreadExit: func(name string, err error) { record("exit-" + name) },
			AfterJoin:    func() { record("after-join") },
		}),
	)

	if status := m.Run(); status != ExitSuccess {
		t.Errorf("Run() = %d, want %d", status, ExitSuccess)
	}
	if !chained.Load() {
		t.Error("previous handler was not chained")
	}

	want := []string{"before", "after-launch", "interrupt", "exit-video", "exit-audio", "after-join"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("hook order = %v, want %v", order, want)
	}
}

func TestManagerRestoresPreviousHandler(t *testing.T) {
	stubScheduler(t, noSched)
	router := NewInterruptRouter()
	var hits atomic.Int32
	router.Install(func(os.Signal) { hits.Add(1) })

	m := NewManager(waitCancelled, nil, WithRouter(router),
		WithHooks(Hooks{AfterLaunch: func() { router.dispatch(os.Interrupt) }}))
	m.Run()

	router.dispatch(os.Interrupt)
	if hits.Load() != 2 {
		t.Errorf("previous handler hits = %d, want 2 (chained once, then restored)", hits.Load())
	}
}

func TestManagerAudioLaunchFailure(t *testing.T) {
	stubScheduler(t, func(c SchedClass) error {
		if c == SchedRealTimeHighest {
			return errors.New("operation not permitted")
		}
		return nil
	})

	var audioRan, afterLaunch, afterJoin atomic.Bool
	m := NewManager(waitCancelled, func(*Env) error {
		audioRan.Store(true)
		return nil
	}, WithRouter(NewInterruptRouter()), WithHooks(Hooks{
		AfterLaunch: func() { afterLaunch.Store(true) },
		AfterJoin:   func() { afterJoin.Store(true) },
	}))

	done := make(chan int, 1)
	go func() { done <- m.Run() }()

	select {
	case status := <-done:
		if status != ExitFailure {
			t.Errorf("Run() = %d, want %d", status, ExitFailure)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after a launch failure")
	}
	if audioRan.Load() {
		t.Error("audio entry ran")
	}
	if afterLaunch.Load() {
		t.Error("AfterLaunch ran after a launch failure")
	}
	if !afterJoin.Load() {
		t.Error("AfterJoin did not run")
	}
	if !m.VideoEnv().Cancelled() {
		t.Error("video loop was not stopped after the audio launch failure")
	}
}

func TestManagerVideoLaunchFailureSkipsAudio(t *testing.T) {
	stubScheduler(t, func(c SchedClass) error {
		if c == SchedDefault {
			return errors.New("no such process")
		}
		return nil
	})

	var launched []string
	launcher := func(name string, class SchedClass, entry EntryFunc, env *Env) (*Thread, error) {
		launched = append(launched, name)
		return Launch(name, class, entry, env)
	}

	m := NewManager(waitCancelled, waitCancelled, WithRouter(NewInterruptRouter()), WithLauncher(launcher))
	if status := m.Run(); status != ExitFailure {
		t.Errorf("Run() = %d, want %d", status, ExitFailure)
	}
	if len(launched) != 1 || launched[0] != "video" {
		t.Errorf("launched = %v, want [video]", launched)
	}
}

func TestManagerSetupFailureDoesNotStopSibling(t *testing.T) {
	stubScheduler(t, noSched)

	videoDone := make(chan struct{})
	var m *Manager
	m = NewManager(
		func(*Env) error {
			defer close(videoDone)
			return fmt.Errorf("open capture: %w", ErrSetup)
		},
		func(env *Env) error {
			<-videoDone
			// Give the manager a chance to react wrongly.
			time.Sleep(20 * time.Millisecond)
			if env.Cancelled() {
				t.Error("audio loop was cancelled by the video failure")
			}
			m.Shutdown()
			return waitCancelled(env)
		},
		WithRouter(NewInterruptRouter()),
	)

	if status := m.Run(); status != ExitFailure {
		t.Errorf("Run() = %d, want %d", status, ExitFailure)
	}
}

func TestManagerIOFailureKeepsSuccessStatus(t *testing.T) {
	stubScheduler(t, noSched)

	var exits sync.Map
	m := NewManager(
		func(*Env) error { return fmt.Errorf("%w: VIDIOC_DQBUF: no such device", ErrIO) },
		func(env *Env) error {
			time.Sleep(20 * time.Millisecond)
			if env.Cancelled() {
				t.Error("audio loop was cancelled by the video I/O failure")
			}
			return nil
		},
		WithRouter(NewInterruptRouter()),
		WithHooks(Hooks{OnThreadExit: func(name string, err error) { exits.Store(name, err) }}),
	)

	if status := m.Run(); status != ExitSuccess {
		t.Errorf("Run() = %d, want %d", status, ExitSuccess)
	}
	if v, _ := exits.Load("video"); !errors.Is(v.(error), ErrIO) {
		t.Errorf("video exit = %v, want ErrIO", v)
	}
}

func TestManagerShutdownOrder(t *testing.T) {
	m := NewManager(nil, nil)
	m.Shutdown()
	if !m.VideoEnv().Cancelled() || !m.AudioEnv().Cancelled() {
		t.Error("Shutdown did not cancel both environments")
	}
}

package lifecycle

import (
	"errors"
	"log/slog"
	"os"
)

// Hooks are optional callbacks around the startup and shutdown protocol.
type Hooks struct {
	// BeforeLaunch runs after the interrupt handler is installed and before
	// any thread starts.
	BeforeLaunch func()
	// AfterLaunch runs once every thread started successfully.
	AfterLaunch func()
	// OnInterrupt runs in the interrupt handler after both loops were cancelled.
	OnInterrupt func(sig os.Signal)
	// OnThreadExit runs after each thread has been joined.
	OnThreadExit func(name string, err error)
	// AfterJoin runs once every created thread has been joined.
	AfterJoin func()
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithHooks installs startup and shutdown callbacks.
func WithHooks(h Hooks) ManagerOption {
	return func(m *Manager) { m.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithRouter uses r instead of a router subscribed to SIGINT and SIGTERM.
// The caller owns the router and is responsible for starting it.
func WithRouter(r *InterruptRouter) ManagerOption {
	return func(m *Manager) {
		m.router = r
		m.ownsRouter = false
	}
}

// WithLauncher replaces the thread launcher.
func WithLauncher(fn LaunchFunc) ManagerOption {
	return func(m *Manager) { m.launch = fn }
}

// Manager runs the video loop under SchedDefault and the audio loop under
// SchedRealTimeHighest and joins both before returning.
type Manager struct {
	video    EntryFunc
	audio    EntryFunc
	videoEnv *Env
	audioEnv *Env

	router     *InterruptRouter
	ownsRouter bool
	prev       Handler

	hooks  Hooks
	launch LaunchFunc
	logger *slog.Logger
}

// NewManager creates a manager for the two loops. A nil audio entry runs
// the video loop alone.
func NewManager(video, audio EntryFunc, opts ...ManagerOption) *Manager {
	m := &Manager{
		video:      video,
		audio:      audio,
		videoEnv:   NewEnv("video"),
		audioEnv:   NewEnv("audio"),
		router:     NewInterruptRouter(),
		ownsRouter: true,
		launch:     Launch,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// VideoEnv returns the environment handed to the video loop.
func (m *Manager) VideoEnv() *Env { return m.videoEnv }

// AudioEnv returns the environment handed to the audio loop.
func (m *Manager) AudioEnv() *Env { return m.audioEnv }

// threadSlot is one launch of the startup protocol.
type threadSlot struct {
	name   string
	class  SchedClass
	entry  EntryFunc
	env    *Env
	thread *Thread
}

// Run executes the startup protocol, waits for every created thread and
// returns the process exit status.
func (m *Manager) Run() int {
	m.prev = m.router.Install(m.handleInterrupt)
	defer m.router.Install(m.prev)
	if m.ownsRouter {
		m.router.Start()
		defer m.router.Stop()
	}

	if m.hooks.BeforeLaunch != nil {
		m.hooks.BeforeLaunch()
	}

	status := ExitSuccess
	slots := []*threadSlot{
		{name: "video", class: SchedDefault, entry: m.video, env: m.videoEnv},
		{name: "audio", class: SchedRealTimeHighest, entry: m.audio, env: m.audioEnv},
	}

	launched := true
	for _, s := range slots {
		if s.entry == nil {
			m.logger.Info("Thread disabled", "thread", s.name)
			continue
		}
		t, err := m.launch(s.name, s.class, s.entry, s.env)
		if err != nil {
			m.logger.Error("Failed to launch thread", "thread", s.name, "class", s.class.String(), "error", err)
			status = ExitFailure
			launched = false
			break
		}
		s.thread = t
		m.logger.Debug("Thread launched", "thread", s.name, "class", s.class.String())
	}

	if !launched {
		// Nothing will deliver an interrupt on the operator's behalf.
		m.cancel()
	} else if m.hooks.AfterLaunch != nil {
		m.hooks.AfterLaunch()
	}

	for _, s := range slots {
		if s.thread == nil {
			continue
		}
		err := s.thread.Join()
		switch {
		case err == nil:
			m.logger.Info("Thread finished", "thread", s.name)
		case errors.Is(err, ErrIO):
			m.logger.Error("Thread stopped on I/O failure", "thread", s.name, "error", err)
		default:
			m.logger.Error("Thread failed", "thread", s.name, "error", err)
		}
		if exitStatus(err) != ExitSuccess {
			status = ExitFailure
		}
		if m.hooks.OnThreadExit != nil {
			m.hooks.OnThreadExit(s.name, err)
		}
	}

	if m.hooks.AfterJoin != nil {
		m.hooks.AfterJoin()
	}
	return status
}

// Shutdown cancels both loops without chaining to a previous handler.
func (m *Manager) Shutdown() {
	m.cancel()
}

// cancel sets the video flag, then the audio flag.
func (m *Manager) cancel() {
	m.videoEnv.Cancel()
	m.audioEnv.Cancel()
}

func (m *Manager) handleInterrupt(sig os.Signal) {
	m.logger.Info("Interrupt received, stopping loops", "signal", sigName(sig))
	m.cancel()
	if m.hooks.OnInterrupt != nil {
		m.hooks.OnInterrupt(sig)
	}
	if m.prev != nil {
		m.prev(sig)
	}
}

func sigName(sig os.Signal) string {
	if sig == nil {
		return ""
	}
	return sig.String()
}

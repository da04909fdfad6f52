package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/loopthru/internal/events"
)

// Manager subscribes to loop state events and drives one LED from the
// aggregate state: solid while every watched loop runs, blinking once any
// loop failed, off after Stop.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	led         string
	loops       []string
	unsubscribe func()
	logger      *slog.Logger

	mu      sync.Mutex
	states  map[string]events.LoopState
	pattern string
}

// NewManager creates a new LED manager that shows the state of loops on
// the named LED.
func NewManager(controller Controller, eventBus *events.Bus, led string, loops []string, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		led:        led,
		loops:      loops,
		logger:     logger,
		states:     make(map[string]events.LoopState),
	}
}

// Start begins listening for loop state change events
func (m *Manager) Start() {
	m.unsubscribe = m.eventBus.Subscribe(func(e events.LoopStateChangedEvent) {
		m.handleEvent(e)
	})
	m.logger.Info("LED manager started", "led", m.led, "loops", m.loops)
}

// Stop unsubscribes from events and switches the LED off.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply("off")
	m.logger.Info("LED manager stopped")
}

// handleEvent records the new state of one loop and updates the LED.
func (m *Manager) handleEvent(event events.LoopStateChangedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[event.Loop] = event.State
	m.logger.Debug("Loop state changed", "loop", event.Loop, "state", event.State)
	m.apply(m.aggregate())
}

// aggregate derives the LED pattern from the recorded loop states.
func (m *Manager) aggregate() string {
	running := 0
	for _, name := range m.loops {
		switch m.states[name] {
		case events.LoopFailed:
			return "blink"
		case events.LoopRunning:
			running++
		}
	}
	if running == len(m.loops) && running > 0 {
		return "solid"
	}
	return "off"
}

// apply sets the LED when the pattern changed. Callers hold mu.
func (m *Manager) apply(pattern string) {
	if pattern == m.pattern {
		return
	}
	if err := m.controller.Set(m.led, pattern != "off", pattern); err != nil {
		m.logger.Warn("Failed to set LED", "led", m.led, "pattern", pattern, "error", err)
		return
	}
	m.pattern = pattern
	m.logger.Debug("LED updated", "led", m.led, "pattern", pattern)
}

// LED returns the name of the LED the manager drives.
func (m *Manager) LED() string {
	return m.led
}

// Pattern returns the pattern currently shown.
func (m *Manager) Pattern() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pattern == "" {
		return "off"
	}
	return m.pattern
}

// GetController returns the underlying LED controller for direct API access
func (m *Manager) GetController() Controller {
	return m.controller
}

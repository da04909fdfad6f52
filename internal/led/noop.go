package led

import (
	"log/slog"
	"sync"
)

// noop stands in on boards without a known status LED. It keeps the last
// pattern per LED so the aggregate state still shows up in debug logs.
type noop struct {
	logger *slog.Logger

	mu   sync.Mutex
	last map[string]string
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger, last: make(map[string]string)}
}

func (n *noop) Set(led string, enabled bool, pattern string) error {
	if !enabled {
		pattern = "off"
	}
	n.mu.Lock()
	prev := n.last[led]
	n.last[led] = pattern
	n.mu.Unlock()

	if prev != pattern {
		n.logger.Debug("No status LED on this board", "led", led, "pattern", pattern)
	}
	return nil
}

// lastPattern returns what Set was last asked to show on led.
func (n *noop) lastPattern(led string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last[led]
}

func (n *noop) Available() []string { return []string{} }

func (n *noop) Patterns() []string { return []string{} }

package devices

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/pkg/linuxav/alsa"
)

// Publisher receives device change events.
type Publisher interface {
	Publish(ev events.Event)
}

// Watcher reports add, remove and change uevents for the device nodes
// the loops were configured with. It only reports; the loops notice a
// vanished device through their own I/O errors.
type Watcher struct {
	roles  map[string]string // device node -> role
	bus    Publisher
	logger *slog.Logger
}

// NewWatcher creates a watcher for roles, a map of device node to role
// name such as "capture" or "display".
func NewWatcher(roles map[string]string, bus Publisher, logger *slog.Logger) *Watcher {
	resolved := make(map[string]string, len(roles))
	for node, role := range roles {
		resolved[filepath.Clean(node)] = role
		// by-id and by-path links arrive in uevents under their target name
		if target, err := filepath.EvalSymlinks(node); err == nil {
			resolved[target] = role
		}
	}
	return &Watcher{roles: resolved, bus: bus, logger: logger}
}

// AudioNode returns the PCM device node behind an ALSA "hw:C,D" string.
func AudioNode(device string, stream alsa.Stream) (string, error) {
	return alsa.DevicePath(device, stream)
}

// handle processes one uevent for a device node.
// It reports whether the node was watched.
func (w *Watcher) handle(action, subsystem, node string) bool {
	if node == "" {
		return false
	}
	role, ok := w.roles[node]
	if !ok {
		return false
	}

	switch action {
	case "remove":
		w.logger.Warn("Device removed", "role", role, "path", node, "subsystem", subsystem)
	case "add":
		w.logger.Info("Device added", "role", role, "path", node, "subsystem", subsystem)
	case "change":
		w.logger.Info("Device changed", "role", role, "path", node, "subsystem", subsystem)
	default:
		return false
	}

	if w.bus != nil {
		w.bus.Publish(events.DeviceChangedEvent{
			Action:    action,
			Role:      role,
			Path:      node,
			Subsystem: subsystem,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return true
}

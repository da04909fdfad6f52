package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// journalIdentifier tags every entry so `journalctl -t loopthru` finds them.
const journalIdentifier = "loopthru"

// JournalHandler writes records to the systemd journal as structured
// entries. Attribute keys become upper-case fields and groups are joined
// with underscores, so "frame" in group "video" is VIDEO_FRAME.
type JournalHandler struct {
	level  slog.Leveler
	prefix string
	fields map[string]any
}

// NewJournalHandler creates a journal handler at level.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{level: level, fields: map[string]any{}}
}

// Enabled reports whether level passes the handler's level.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle sends r to the journal.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := maps.Clone(h.fields)
	r.Attrs(func(a slog.Attr) bool {
		flatten(attrs, h.prefix, "_", a)
		return true
	})

	vars := make(map[string]string, len(attrs)+1)
	for key, value := range attrs {
		if name := journalField(key); name != "" {
			vars[name] = fmt.Sprint(value)
		}
	}
	vars["SYSLOG_IDENTIFIER"] = journalIdentifier

	if err := journal.Send(r.Message, journalPriority(r.Level), vars); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}

// WithAttrs returns a handler that adds attrs to every entry.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := maps.Clone(h.fields)
	for _, a := range attrs {
		flatten(fields, h.prefix, "_", a)
	}
	return &JournalHandler{level: h.level, prefix: h.prefix, fields: fields}
}

// WithGroup returns a handler that prefixes later attributes with name.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &JournalHandler{level: h.level, prefix: h.prefix + name + "_", fields: h.fields}
}

// journalField turns an attribute key into a valid journal field name:
// upper case letters, digits and underscores, not starting with an
// underscore (those are trusted fields set by journald).
func journalField(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	name = strings.TrimLeft(name, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return ""
	}
	switch name {
	case "MESSAGE", "PRIORITY", "SYSLOG_IDENTIFIER":
		return "ATTR_" + name
	}
	return name
}

// journalPriority maps slog levels to syslog priorities.
func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// IsJournalAvailable reports whether the journal socket is reachable.
func IsJournalAvailable() bool {
	return journal.Enabled()
}

package logging

import (
	"context"
	"log/slog"
	"maps"
)

// LogCallback receives every buffered entry, e.g. to publish it on the
// event bus without an import cycle.
type LogCallback func(entry LogEntry)

// BufferHandler records entries in the log history and hands each one to
// the registered log callback. Both are looked up per record, so a handler
// created before Initialize starts recording once Initialize ran.
type BufferHandler struct {
	level  slog.Leveler
	module string
	prefix string
	attrs  map[string]any
}

// NewBufferHandler creates a buffering handler at level.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{level: level, module: "app", attrs: map[string]any{}}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	history, callback := std.sink()
	if history == nil {
		return nil
	}

	module := h.module
	attrs := maps.Clone(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == "module" {
			module = a.Value.String()
			return true
		}
		flatten(attrs, h.prefix, ".", a)
		return true
	})

	entry := history.Append(LogEntry{
		Timestamp:  r.Time,
		Level:      levelName(r.Level),
		Module:     module,
		Message:    r.Message,
		Attributes: attrs,
	})
	if callback != nil {
		callback(entry)
	}
	return nil
}

// WithAttrs implements slog.Handler. A top-level "module" attribute names
// the entry's module instead of becoming an attribute.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &BufferHandler{level: h.level, module: h.module, prefix: h.prefix, attrs: maps.Clone(h.attrs)}
	for _, a := range attrs {
		if h.prefix == "" && a.Key == "module" {
			next.module = a.Value.String()
			continue
		}
		flatten(next.attrs, h.prefix, ".", a)
	}
	return next
}

// WithGroup implements slog.Handler.
func (h *BufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &BufferHandler{level: h.level, module: h.module, prefix: h.prefix + name + ".", attrs: h.attrs}
}

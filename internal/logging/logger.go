package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const historySize = 1000

// Modules lists the logger names used across loopthru.
var Modules = []string{"main", "video", "audio", "lifecycle", "scripts", "devices", "api", "led", "config"}

// Logger is the subset of *slog.Logger that helpers accept.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the [logging] table.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// registry owns every module logger. Loggers are cached for the life of
// the process; level changes go through their LevelVar.
type registry struct {
	mu       sync.RWMutex
	cfg      Config
	ready    bool
	root     slog.LevelVar
	levels   map[string]*slog.LevelVar
	loggers  map[string]*slog.Logger
	history  *History
	callback LogCallback
}

var std = newRegistry()

func newRegistry() *registry {
	return &registry{
		levels:  make(map[string]*slog.LevelVar),
		loggers: make(map[string]*slog.Logger),
	}
}

// sink returns where buffered entries go. history is nil before Initialize.
func (r *registry) sink() (*History, LogCallback) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.history, r.callback
}

// Initialize applies config and starts recording history. Loggers handed
// out earlier pick up the new levels but keep the text format.
func Initialize(config Config) {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.cfg = config
	std.ready = true
	std.history = NewHistory(historySize)
	std.root.Set(levelFor(config, ""))

	for module, lv := range std.levels {
		lv.Set(levelFor(config, module))
	}
	slog.SetDefault(slog.New(createHandler(config.Format, &std.root)))
}

// UpdateLevels changes the level of every logger in place. The format is
// only read by Initialize.
func UpdateLevels(config Config) {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.cfg.Level = config.Level
	std.cfg.Modules = config.Modules
	std.root.Set(levelFor(config, ""))
	for module, lv := range std.levels {
		lv.Set(levelFor(config, module))
	}
}

// GetHistory returns the recorded entries, nil before Initialize.
func GetHistory() *History {
	h, _ := std.sink()
	return h
}

// SetLogCallback registers fn to receive every recorded entry; nil clears it.
func SetLogCallback(fn LogCallback) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.callback = fn
}

// GetLogger returns the logger for module, creating it on first use.
func GetLogger(module string) *slog.Logger {
	std.mu.RLock()
	logger, ok := std.loggers[module]
	std.mu.RUnlock()
	if ok {
		return logger
	}

	std.mu.Lock()
	defer std.mu.Unlock()
	if logger, ok := std.loggers[module]; ok {
		return logger
	}

	lv := &slog.LevelVar{}
	format := "text"
	if std.ready {
		lv.Set(levelFor(std.cfg, module))
		format = std.cfg.Format
	}
	logger = newModuleLogger(format, lv, module)
	std.levels[module] = lv
	std.loggers[module] = logger
	return logger
}

func newModuleLogger(format string, level slog.Leveler, module string) *slog.Logger {
	return slog.New(createHandler(format, level)).With("module", module)
}

// levelFor resolves the level of module: its override when valid, else
// the global level, else info. An empty module asks for the global level.
func levelFor(config Config, module string) slog.Level {
	if module != "" {
		if l, ok := parseLevel(config.Modules[module]); ok {
			return l
		}
	}
	if l, ok := parseLevel(config.Level); ok {
		return l
	}
	return slog.LevelInfo
}

// createHandler fans a record out to stdout, the journal and the history.
// stdout is skipped when it is closed, the journal when its socket is
// missing.
func createHandler(format string, level slog.Leveler) slog.Handler {
	var out fanout
	if stdoutUsable() {
		opts := &slog.HandlerOptions{Level: level}
		if format == "json" {
			out = append(out, slog.NewJSONHandler(os.Stdout, opts))
		} else {
			out = append(out, slog.NewTextHandler(os.Stdout, opts))
		}
	}
	if IsJournalAvailable() {
		out = append(out, NewJournalHandler(level))
	}
	out = append(out, NewBufferHandler(level))

	if len(out) == 1 {
		return out[0]
	}
	return out
}

func stdoutUsable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	m := fi.Mode()
	return m.IsRegular() || m&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0
}

// ValidLevel reports whether level is a level name Initialize understands.
func ValidLevel(level string) bool {
	_, ok := parseLevel(level)
	return ok
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// Package logging provides slog loggers with a level per module.
//
// Initialize once at startup, then ask for a module logger:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"video": "debug"},
//	})
//	logger := logging.GetLogger("video")
//	logger.Debug("Frame displayed", "frame", n, "displayed", idx.Displayed, "working", idx.Working)
//
// Every record goes to each available destination:
//   - stdout (text or JSON) when it is a terminal, pipe, socket or file
//   - the systemd journal when its socket is reachable, tagged loopthru
//   - an in-memory ring buffer that backs the API log stream
//
// Journal fields are the upper-cased attribute keys, so a loop's entries
// can be filtered with
//
//	journalctl -t loopthru MODULE=audio -p warning
//
// Module levels are *slog.LevelVar values. [UpdateLevels] changes them in
// place, which is how the config watcher applies an edited [logging]
// table without a restart; the format only takes effect at startup.
//
//	[logging]
//	level = "info"
//	video = "debug"   # or under [logging.modules]
package logging

package api

import (
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// quietPaths are polled by probes and dashboards; they log at debug.
var quietPaths = map[string]bool{
	"/api/health": true,
	"/api/status": true,
}

// requestLogger logs one line per request. Server errors log at error,
// client errors at warn, probe paths at debug. Credentials passed in the
// query are redacted.
func requestLogger(logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		status := ctx.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case quietPaths[ctx.URL().Path]:
			level = slog.LevelDebug
		}

		attrs := []slog.Attr{
			slog.String("method", ctx.Method()),
			slog.String("path", ctx.URL().Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", ctx.RemoteAddr()),
		}
		u := ctx.URL()
		if q := u.Query(); len(q) > 0 {
			if q.Has("auth") {
				q.Set("auth", "redacted")
			}
			attrs = append(attrs, slog.String("query", q.Encode()))
		}
		logger.LogAttrs(ctx.Context(), level, "HTTP request", attrs...)
	}
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/loopthru/internal/api/models"
)

// StatusStreamInput sets how often the counters are sent.
type StatusStreamInput struct {
	IntervalMs int `query:"interval_ms" default:"1000" minimum:"100" maximum:"60000" doc:"Milliseconds between snapshots"`
}

// registerMetricsRoutes registers the periodic status SSE endpoint.
func (s *Server) registerMetricsRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "status-stream",
		Method:      http.MethodGet,
		Path:        "/api/status/stream",
		Summary:     "Status Stream",
		Description: "Loop counters sent at a fixed interval, for live frame and period rates",
		Tags:        []string{"status"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"status": models.StatusData{},
	}, func(ctx context.Context, input *StatusStreamInput, send sse.Sender) {
		ticker := time.NewTicker(time.Duration(input.IntervalMs) * time.Millisecond)
		defer ticker.Stop()

		for {
			if err := send.Data(s.snapshot()); err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})
}

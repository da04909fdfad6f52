package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/loopthru/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	if s.eventBus == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of loop state changes, device hotplug, script results and shutdown requests",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"loop-state-changed": events.LoopStateChangedEvent{},
		"device-changed":     events.DeviceChangedEvent{},
		"script-finished":    events.ScriptFinishedEvent{},
		"shutdown-requested": events.ShutdownRequestedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.Forward[events.LoopStateChangedEvent](s.eventBus, eventCh),
			events.Forward[events.DeviceChangedEvent](s.eventBus, eventCh),
			events.Forward[events.ScriptFinishedEvent](s.eventBus, eventCh),
			events.Forward[events.ShutdownRequestedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Current loop states, so clients need no separate status call
		snap := s.snapshot()
		now := time.Now().UTC().Format(time.RFC3339)
		initial := []events.LoopStateChangedEvent{{Loop: "video", State: snap.Video.State, Timestamp: now}}
		if snap.Audio != nil {
			initial = append(initial, events.LoopStateChangedEvent{Loop: "audio", State: snap.Audio.State, Timestamp: now})
		}
		for _, ev := range initial {
			if ev.State == "" {
				continue
			}
			if err := send.Data(ev); err != nil {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

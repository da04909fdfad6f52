package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// LEDState is the status LED as driven by the loop states.
type LEDState struct {
	LED       string   `json:"led" example:"system" doc:"LED that shows the loop state"`
	Pattern   string   `json:"pattern" example:"solid" doc:"Current pattern: solid while both loops run, blink after a failure, off otherwise"`
	Available []string `json:"available" doc:"LED names on this board"`
	Patterns  []string `json:"patterns" doc:"Patterns the board accepts"`
}

// LEDStateResponse wraps LEDState.
type LEDStateResponse struct {
	Body LEDState
}

// LEDSetRequest overrides one LED until the status pattern next changes.
type LEDSetRequest struct {
	Name string `path:"name" example:"system" doc:"LED name"`
	Body struct {
		Enabled bool   `json:"enabled" example:"true" doc:"Switch the LED on or off"`
		Pattern string `json:"pattern,omitempty" example:"heartbeat" doc:"Pattern to apply, empty keeps the current one"`
	}
}

func (s *Server) registerLEDRoutes() {
	leds := s.options.LEDs
	if leds == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led",
		Method:      http.MethodGet,
		Path:        "/api/leds",
		Summary:     "Status LED",
		Description: "Get the status LED, its current pattern and what the board supports",
		Tags:        []string{"leds"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*LEDStateResponse, error) {
		ctrl := leds.GetController()
		return &LEDStateResponse{Body: LEDState{
			LED:       leds.LED(),
			Pattern:   leds.Pattern(),
			Available: ctrl.Available(),
			Patterns:  ctrl.Patterns(),
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led",
		Method:      http.MethodPut,
		Path:        "/api/leds/{name}",
		Summary:     "Override LED",
		Description: "Set an LED directly until the status pattern next changes.",
		Tags:        []string{"leds"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *LEDSetRequest) (*struct{}, error) {
		if err := leds.GetController().Set(input.Name, input.Body.Enabled, input.Body.Pattern); err != nil {
			return nil, huma.Error400BadRequest("Failed to set LED", err)
		}
		s.logger.Info("LED overridden", "led", input.Name, "enabled", input.Body.Enabled, "pattern", input.Body.Pattern)
		return &struct{}{}, nil
	})
}

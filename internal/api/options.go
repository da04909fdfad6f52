package api

import (
	"context"
	"net/http"

	"github.com/smazurov/loopthru/internal/audio"
	"github.com/smazurov/loopthru/internal/devices"
	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/led"
	"github.com/smazurov/loopthru/internal/loop"
	"github.com/smazurov/loopthru/internal/systemd"
)

// VideoSource is satisfied by *loop.Engine.
type VideoSource interface {
	Stats() loop.Stats
}

// AudioSource is satisfied by *audio.Loop.
type AudioSource interface {
	Stats() audio.Stats
}

// LEDStatus is satisfied by *led.Manager.
type LEDStatus interface {
	LED() string
	Pattern() string
	GetController() led.Controller
}

// UnitStatusGetter is satisfied by *systemd.Manager.
type UnitStatusGetter interface {
	GetServiceStatus(ctx context.Context, unit string) (systemd.UnitStatus, error)
}

// Options configures the API server. Nil sources disable their routes.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	EventBus          *events.Bus
	Video             VideoSource
	Audio             AudioSource // nil when the audio loop is disabled
	LEDs              LEDStatus
	SystemdManager    UnitStatusGetter
	ServiceName       string                            // unit reported by the systemd route
	ListDevices       func() (devices.Inventory, error) // defaults to devices.List
	PrometheusHandler http.Handler                      // Optional Prometheus metrics handler
}

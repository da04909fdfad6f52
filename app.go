package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/smazurov/loopthru/internal/api"
	"github.com/smazurov/loopthru/internal/audio"
	"github.com/smazurov/loopthru/internal/config"
	"github.com/smazurov/loopthru/internal/devices"
	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/led"
	"github.com/smazurov/loopthru/internal/lifecycle"
	"github.com/smazurov/loopthru/internal/logging"
	"github.com/smazurov/loopthru/internal/loop"
	"github.com/smazurov/loopthru/internal/metrics"
	"github.com/smazurov/loopthru/internal/metrics/exporters"
	"github.com/smazurov/loopthru/internal/process"
	"github.com/smazurov/loopthru/internal/systemd"
	"github.com/smazurov/loopthru/pkg/linuxav/alsa"
	"github.com/smazurov/loopthru/pkg/linuxav/fbdev"
)

const usageHint = "\tPress Ctrl-C to exit"

// app is one loopback run: the two loops plus everything that reports on them.
type app struct {
	opts   *Options
	logger *slog.Logger
	bus    *events.Bus

	videoCfg loop.Config
	audioCfg audio.Config
	engine   *loop.Engine
	audio    *audio.Loop // nil when the audio loop is disabled

	scripts  *process.Runner
	notifier *systemd.Notifier
	leds     *led.Manager
	units    *systemd.Manager
	server   *api.Server
	reload   *config.Watcher[logging.Config]
	hotplug  *devices.Watcher

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// videoConfig builds the video loop configuration from the options.
func videoConfig(opts *Options) (loop.Config, error) {
	zoom, err := fbdev.ParseZoom(opts.VideoZoom)
	if err != nil {
		return loop.Config{}, err
	}
	capture := opts.VideoCaptureDevice
	if capture != "" {
		if capture, err = devices.ResolveDevicePath(capture); err != nil {
			return loop.Config{}, err
		}
	}
	cfg := loop.Config{
		CaptureDevice:  capture,
		DisplayDevice:  opts.VideoDisplayDevice,
		Width:          opts.VideoWidth,
		Height:         opts.VideoHeight,
		BytesPerPixel:  opts.VideoBytesPerPixel,
		CaptureBuffers: opts.VideoCaptureBuffers,
		DisplayBuffers: opts.VideoDisplayBuffers,
		Zoom:           zoom,
		WaitVSync:      opts.VideoWaitVsync,
	}
	if err := cfg.Validate(); err != nil {
		return loop.Config{}, fmt.Errorf("video: %w", err)
	}
	return cfg, nil
}

// audioConfig builds the audio loop configuration from the options.
func audioConfig(opts *Options) (audio.Config, error) {
	cfg := audio.Config{
		CaptureDevice:  opts.AudioCaptureDevice,
		PlaybackDevice: opts.AudioPlaybackDevice,
		Rate:           opts.AudioRate,
		Channels:       opts.AudioChannels,
		PeriodFrames:   opts.AudioPeriodFrames,
		Periods:        opts.AudioPeriods,
	}
	if err := cfg.Validate(); err != nil {
		return audio.Config{}, fmt.Errorf("audio: %w", err)
	}
	return cfg, nil
}

// newApp validates opts and builds the loops. No device is opened yet.
func newApp(opts *Options) (*app, error) {
	a := &app{
		opts:   opts,
		logger: logging.GetLogger("main"),
		bus:    events.New(),
	}

	var err error
	if a.videoCfg, err = videoConfig(opts); err != nil {
		return nil, err
	}
	a.engine = loop.NewEngine(a.videoCfg,
		loop.WithLogger(logging.GetLogger("video")),
		loop.WithEventBus(a.bus))

	if opts.AudioEnabled {
		if a.audioCfg, err = audioConfig(opts); err != nil {
			return nil, err
		}
		a.audio = audio.NewLoop(a.audioCfg,
			audio.WithLogger(logging.GetLogger("audio")),
			audio.WithEventBus(a.bus))
	}

	a.scripts = process.NewRunner(logging.GetLogger("scripts"),
		process.WithTimeout(time.Duration(opts.ScriptsTimeoutMs)*time.Millisecond),
		process.WithEventBus(a.bus))
	a.notifier = systemd.NewNotifier(a.logger)
	return a, nil
}

// run starts the supporting services, runs both loops to completion and
// returns the process exit status.
func (a *app) run() int {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer a.shutdown()

	// Forward log entries to the event bus for the API log stream.
	logging.SetLogCallback(func(entry logging.LogEntry) {
		a.bus.Publish(api.LogEntryToEvent(entry))
	})
	defer logging.SetLogCallback(nil)

	a.startReload()
	a.startLEDs()
	a.startHotplug(ctx)
	a.startAPI(ctx)

	var audioEntry lifecycle.EntryFunc
	if a.audio != nil {
		audioEntry = a.audio.Run
	}
	mgr := lifecycle.NewManager(a.engine.Run, audioEntry,
		lifecycle.WithLogger(logging.GetLogger("lifecycle")),
		lifecycle.WithHooks(a.hooks(ctx)))

	status := mgr.Run()
	a.logger.Info("Loopback finished", "exit_code", status)
	return status
}

// hooks wires the display scripts, readiness and metrics into the
// startup and shutdown protocol.
func (a *app) hooks(ctx context.Context) lifecycle.Hooks {
	return lifecycle.Hooks{
		BeforeLaunch: func() {
			if _, err := a.scripts.Run(ctx, process.Script{Name: "show", Command: a.opts.ScriptsShow}); err != nil {
				a.logger.Warn("Display show script failed", "error", err)
			}
			fmt.Println(usageHint)
		},
		AfterLaunch: func() {
			metrics.SetThreadRunning("video", true)
			if a.audio != nil {
				metrics.SetThreadRunning("audio", true)
			}
			a.notifier.Ready("looping " + a.videoCfg.CaptureDevice + " to " + a.videoCfg.DisplayDevice)
		},
		OnInterrupt: func(sig os.Signal) {
			a.bus.Publish(events.ShutdownRequestedEvent{
				Signal:    sig.String(),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			a.notifier.Stopping("interrupted by " + sig.String())
		},
		OnThreadExit: func(name string, err error) {
			metrics.RecordThreadExit(name, exitOutcome(err))
		},
		AfterJoin: func() {
			if _, err := a.scripts.Run(ctx, process.Script{Name: "reset", Command: a.opts.ScriptsReset}); err != nil {
				a.logger.Warn("Display reset script failed", "error", err)
			}
		},
	}
}

// exitOutcome classifies a thread result for the exit counter.
func exitOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lifecycle.ErrSetup):
		return "setup"
	default:
		return "io"
	}
}

func (a *app) startReload() {
	if a.opts.Config == "" {
		return
	}
	a.reload = config.NewConfigWatcher(a.opts.Config, config.LoadLoggingFile, logging.GetLogger("config"))
	a.reload.OnReload(func(cfg logging.Config) {
		logging.UpdateLevels(cfg)
		a.logger.Info("Logging levels reloaded", "level", cfg.Level)
	})
	if err := a.reload.Start(); err != nil {
		a.logger.Warn("Failed to start config watcher, hot-reload disabled", "error", err)
		a.reload = nil
	}
}

func (a *app) startLEDs() {
	if !a.opts.FeaturesLEDControl {
		return
	}
	ledLogger := logging.GetLogger("led")
	controller, name := led.New(ledLogger)
	watched := []string{"video"}
	if a.audio != nil {
		watched = append(watched, "audio")
	}
	a.leds = led.NewManager(controller, a.bus, name, watched, ledLogger)
	a.leds.Start()
}

func (a *app) startHotplug(ctx context.Context) {
	roles := map[string]string{
		a.videoCfg.CaptureDevice: "capture",
		a.videoCfg.DisplayDevice: "display",
	}
	if a.audio != nil {
		if node, err := devices.AudioNode(a.audioCfg.CaptureDevice, alsa.StreamCapture); err == nil {
			roles[node] = "audio-capture"
		}
		if node, err := devices.AudioNode(a.audioCfg.PlaybackDevice, alsa.StreamPlayback); err == nil {
			roles[node] = "audio-playback"
		}
	}
	a.hotplug = devices.NewWatcher(roles, a.bus, logging.GetLogger("devices"))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.hotplug.Run(ctx); err != nil {
			a.logger.Warn("Device watcher stopped", "error", err)
		}
	}()
}

func (a *app) startAPI(ctx context.Context) {
	if a.opts.APIPort == "" {
		return
	}

	apiOpts := &api.Options{
		AuthUsername:      a.opts.APIUsername,
		AuthPassword:      a.opts.APIPassword,
		EventBus:          a.bus,
		Video:             a.engine,
		PrometheusHandler: exporters.HTTPHandler(),
	}
	if a.audio != nil {
		apiOpts.Audio = a.audio
	}
	if a.leds != nil {
		apiOpts.LEDs = a.leds
	}
	if units, err := systemd.NewManager(ctx, false); err != nil {
		a.logger.Warn("systemd D-Bus unavailable, unit status disabled", "error", err)
	} else {
		a.units = units
		apiOpts.SystemdManager = units
	}

	a.server = api.NewServer(apiOpts)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Start(a.opts.APIPort); err != nil {
			a.logger.Error("Failed to start API server", "error", err)
		}
	}()
}

// shutdown stops the supporting services in reverse start order.
func (a *app) shutdown() {
	if a.server != nil {
		if err := a.server.Stop(); err != nil {
			a.logger.Warn("Error stopping API server", "error", err)
		}
	}
	if a.units != nil {
		a.units.Close()
	}
	a.cancel()
	a.wg.Wait()

	if a.leds != nil {
		a.leds.Stop()
	}
	if a.reload != nil {
		if err := a.reload.Stop(); err != nil {
			a.logger.Warn("Error stopping config watcher", "error", err)
		}
	}
}

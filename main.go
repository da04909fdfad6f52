package main

import (
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/loopthru/cmd"
	"github.com/smazurov/loopthru/internal/config"
	"github.com/smazurov/loopthru/internal/lifecycle"
	"github.com/smazurov/loopthru/internal/logging"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"loopthru.toml"`

	// Video loop settings
	VideoCaptureDevice  string `help:"V4L2 capture device or stable device ID" default:"/dev/video0" toml:"video.capture_device" env:"VIDEO_CAPTURE_DEVICE"`
	VideoDisplayDevice  string `help:"Framebuffer device" default:"/dev/fb1" toml:"video.display_device" env:"VIDEO_DISPLAY_DEVICE"`
	VideoWidth          int    `help:"Requested capture width" default:"640" toml:"video.width" env:"VIDEO_WIDTH"`
	VideoHeight         int    `help:"Requested capture height" default:"480" toml:"video.height" env:"VIDEO_HEIGHT"`
	VideoBytesPerPixel  int    `help:"Bytes per pixel of the capture format" default:"2" toml:"video.bytes_per_pixel" env:"VIDEO_BYTES_PER_PIXEL"`
	VideoCaptureBuffers int    `help:"Number of capture buffers" default:"3" toml:"video.capture_buffers" env:"VIDEO_CAPTURE_BUFFERS"`
	VideoDisplayBuffers int    `help:"Number of display surfaces" default:"2" toml:"video.display_buffers" env:"VIDEO_DISPLAY_BUFFERS"`
	VideoZoom           string `help:"Display zoom (1x, 2x, 4x)" default:"1x" toml:"video.zoom" env:"VIDEO_ZOOM"`
	VideoWaitVsync      bool   `help:"Wait for vertical sync after each flip" default:"false" toml:"video.wait_vsync" env:"VIDEO_WAIT_VSYNC"`

	// Audio loop settings
	AudioEnabled        bool   `help:"Run the audio pass-through loop" default:"true" toml:"audio.enabled" env:"AUDIO_ENABLED"`
	AudioCaptureDevice  string `help:"ALSA capture device" default:"hw:0,0" toml:"audio.capture_device" env:"AUDIO_CAPTURE_DEVICE"`
	AudioPlaybackDevice string `help:"ALSA playback device" default:"hw:0,0" toml:"audio.playback_device" env:"AUDIO_PLAYBACK_DEVICE"`
	AudioRate           int    `help:"Sample rate in Hz" default:"48000" toml:"audio.rate" env:"AUDIO_RATE"`
	AudioChannels       int    `help:"Channel count" default:"2" toml:"audio.channels" env:"AUDIO_CHANNELS"`
	AudioPeriodFrames   int    `help:"Frames per period" default:"1024" toml:"audio.period_frames" env:"AUDIO_PERIOD_FRAMES"`
	AudioPeriods        int    `help:"Periods per buffer" default:"4" toml:"audio.periods" env:"AUDIO_PERIODS"`

	// Display script settings
	ScriptsShow      string `help:"Shell snippet run before the loops start" default:"cd ..; ./vid1Show" toml:"scripts.show" env:"SCRIPTS_SHOW"`
	ScriptsReset     string `help:"Shell snippet run after the loops stop" default:"cd ..; ./resetVideo" toml:"scripts.reset" env:"SCRIPTS_RESET"`
	ScriptsTimeoutMs int    `help:"Script timeout in milliseconds (0 disables)" default:"10000" toml:"scripts.timeout_ms" env:"SCRIPTS_TIMEOUT_MS"`

	// API settings
	APIPort     string `help:"Status API listen address, empty disables the API" default:"" toml:"api.port" env:"API_PORT"`
	APIUsername string `help:"Basic auth username" default:"" toml:"api.username" env:"API_USERNAME"`
	APIPassword string `help:"Basic auth password" default:"" toml:"api.password" env:"API_PASSWORD"`

	// Features settings
	FeaturesLEDControl bool `help:"Enable LED control" default:"false" toml:"features.led_control_enabled" env:"FEATURES_LED_CONTROL"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingVideo     string `help:"Video loop logging level" default:"info" toml:"logging.video" env:"LOGGING_VIDEO"`
	LoggingAudio     string `help:"Audio loop logging level" default:"info" toml:"logging.audio" env:"LOGGING_AUDIO"`
	LoggingLifecycle string `help:"Thread lifecycle logging level" default:"info" toml:"logging.lifecycle" env:"LOGGING_LIFECYCLE"`
	LoggingScripts   string `help:"Display script logging level" default:"info" toml:"logging.scripts" env:"LOGGING_SCRIPTS"`
	LoggingDevices   string `help:"Device watcher logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

// loggingConfig maps the logging options onto per-module levels.
func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"video":     o.LoggingVideo,
			"audio":     o.LoggingAudio,
			"lifecycle": o.LoggingLifecycle,
			"scripts":   o.LoggingScripts,
			"devices":   o.LoggingDevices,
			"api":       o.LoggingAPI,
		},
	}
}

func main() {
	status := lifecycle.ExitSuccess

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())

		// Set by OnStart once the loops were joined and cleaned up.
		finished := make(chan struct{})

		hooks.OnStart(func() {
			defer close(finished)
			a, err := newApp(opts)
			if err != nil {
				logging.GetLogger("main").Error("Invalid configuration", "error", err)
				status = lifecycle.ExitFailure
				return
			}
			status = a.run()
		})

		hooks.OnStop(func() {
			// The lifecycle manager receives the same signal and stops the
			// loops; wait for the reset script before the process exits.
			<-finished
		})
	})

	cli.Root().Use = "loopthru"
	cli.Root().Short = "Loop V4L2 capture onto a framebuffer and ALSA capture onto playback"

	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
	os.Exit(status)
}

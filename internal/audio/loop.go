// Package audio passes an ALSA capture stream straight through to a
// playback stream, one period at a time.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/lifecycle"
	"github.com/smazurov/loopthru/internal/metrics"
	"github.com/smazurov/loopthru/pkg/linuxav/alsa"
)

const loopName = "audio"

// primePeriods of silence are queued ahead of the first captured period,
// so playback runs that far behind capture.
const primePeriods = 1

// Config describes the PCM pair and the stream parameters shared by both.
type Config struct {
	CaptureDevice  string
	PlaybackDevice string
	Rate           int
	Channels       int
	PeriodFrames   int
	Periods        int
}

// DefaultConfig returns a 48 kHz stereo loop on hw:0,0.
func DefaultConfig() Config {
	return Config{
		CaptureDevice:  "hw:0,0",
		PlaybackDevice: "hw:0,0",
		Rate:           48000,
		Channels:       2,
		PeriodFrames:   1024,
		Periods:        4,
	}
}

// Params returns the S16_LE interleaved parameters for both PCMs.
func (c Config) Params() alsa.Params {
	return alsa.Params{
		Format:       alsa.FormatS16LE,
		Channels:     c.Channels,
		Rate:         c.Rate,
		PeriodFrames: c.PeriodFrames,
		Periods:      c.Periods,
		StartPeriods: primePeriods + 1,
	}
}

// Validate checks the static parts of the configuration.
func (c Config) Validate() error {
	switch {
	case c.CaptureDevice == "" || c.PlaybackDevice == "":
		return errors.New("capture and playback devices are required")
	case c.Rate <= 0:
		return fmt.Errorf("invalid rate %d", c.Rate)
	case c.Channels <= 0:
		return fmt.Errorf("invalid channel count %d", c.Channels)
	case c.PeriodFrames <= 0:
		return fmt.Errorf("invalid period size %d", c.PeriodFrames)
	case c.Periods < 2:
		return fmt.Errorf("need at least 2 periods, got %d", c.Periods)
	}
	return nil
}

// Publisher receives loop state changes.
type Publisher interface {
	Publish(ev events.Event)
}

// Option configures a Loop.
type Option func(*Loop)

// WithOpener replaces the ALSA opener.
func WithOpener(fn PCMOpener) Option {
	return func(l *Loop) { l.open = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithEventBus publishes loop state changes to bus.
func WithEventBus(bus Publisher) Option {
	return func(l *Loop) { l.bus = bus }
}

// Stats is a point-in-time view of the audio loop.
type Stats struct {
	State         events.LoopState `json:"state"`
	Periods       uint64           `json:"periods"`
	CaptureXruns  uint64           `json:"capture_xruns"`
	PlaybackXruns uint64           `json:"playback_xruns"`
}

// Loop is the audio pass-through. Run it once per Loop.
type Loop struct {
	cfg    Config
	open   PCMOpener
	logger *slog.Logger
	bus    Publisher

	state         atomic.Value
	periods       atomic.Uint64
	captureXruns  atomic.Uint64
	playbackXruns atomic.Uint64
}

// NewLoop creates an audio loop for cfg.
func NewLoop(cfg Config, opts ...Option) *Loop {
	l := &Loop{
		cfg:    cfg,
		open:   openALSA,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state.Store(events.LoopStopped)
	return l
}

// pcms holds the streams the loop acquired. A nil slot is skipped on release.
type pcms struct {
	capture  PCM
	playback PCM
}

// release stops and closes playback, then capture.
func (p *pcms) release() error {
	var errs []error
	if p.playback != nil {
		errs = append(errs, stop("playback", p.playback))
		p.playback = nil
	}
	if p.capture != nil {
		errs = append(errs, stop("capture", p.capture))
		p.capture = nil
	}
	return errors.Join(errs...)
}

func stop(name string, p PCM) error {
	var errs []error
	if err := p.Drop(); err != nil {
		errs = append(errs, fmt.Errorf("drop %s: %w", name, err))
	}
	if err := p.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", name, err))
	}
	return errors.Join(errs...)
}

// Run is the audio thread entry point. It returns nil once env is
// cancelled, an error wrapping lifecycle.ErrSetup if a PCM could not be
// opened, or one wrapping lifecycle.ErrIO on an unrecoverable transfer error.
func (l *Loop) Run(env *lifecycle.Env) error {
	l.transition(events.LoopStarting, nil)

	var p pcms
	err := l.run(env, &p)
	if rerr := p.release(); rerr != nil {
		l.logger.Warn("Audio teardown incomplete", "error", rerr)
	}

	if err != nil {
		l.transition(events.LoopFailed, err)
		return err
	}
	l.transition(events.LoopStopped, nil)
	return nil
}

func (l *Loop) run(env *lifecycle.Env, p *pcms) error {
	params := l.cfg.Params()

	in, err := l.open(l.cfg.CaptureDevice, alsa.StreamCapture, params)
	if err != nil {
		l.logger.Error("Failed to open capture PCM", "device", l.cfg.CaptureDevice, "error", err)
		return fmt.Errorf("%w: open capture PCM %s: %w", lifecycle.ErrSetup, l.cfg.CaptureDevice, err)
	}
	p.capture = in

	out, err := l.open(l.cfg.PlaybackDevice, alsa.StreamPlayback, params)
	if err != nil {
		l.logger.Error("Failed to open playback PCM", "device", l.cfg.PlaybackDevice, "error", err)
		return fmt.Errorf("%w: open playback PCM %s: %w", lifecycle.ErrSetup, l.cfg.PlaybackDevice, err)
	}
	p.playback = out

	if in.FrameBytes() != out.FrameBytes() {
		return fmt.Errorf("%w: capture frame is %d bytes, playback frame is %d",
			lifecycle.ErrSetup, in.FrameBytes(), out.FrameBytes())
	}

	l.logger.Info("Audio streams opened",
		"capture", l.cfg.CaptureDevice,
		"playback", l.cfg.PlaybackDevice,
		"rate", params.Rate,
		"channels", params.Channels,
		"period_frames", in.PeriodFrames(),
		"capture_buffer_frames", in.BufferFrames(),
		"playback_buffer_frames", out.BufferFrames())

	if err := l.prime(out); err != nil {
		return err
	}
	l.transition(events.LoopRunning, nil)
	return l.cycle(env, in, out)
}

func (l *Loop) cycle(env *lifecycle.Env, in, out PCM) error {
	frameBytes := in.FrameBytes()
	buf := make([]byte, in.PeriodFrames()*frameBytes)

	for !env.Cancelled() {
		n, err := in.ReadFrames(buf)
		if err != nil {
			if rerr := l.recoverXrun("capture", in, err); rerr != nil {
				return rerr
			}
			continue
		}
		if err := l.write(out, buf[:n*frameBytes], frameBytes); err != nil {
			return err
		}
		l.periods.Add(1)
		metrics.RecordAudioPeriod()
	}
	return nil
}

// write plays all of data. After an underrun playback is re-prepared and
// primed again before the rest of data goes out.
func (l *Loop) write(out PCM, data []byte, frameBytes int) error {
	for len(data) > 0 {
		n, err := out.WriteFrames(data)
		if err != nil {
			if rerr := l.recoverXrun("playback", out, err); rerr != nil {
				return rerr
			}
			if perr := l.prime(out); perr != nil {
				return perr
			}
			continue
		}
		if n <= 0 {
			return fmt.Errorf("%w: playback accepted no frames", lifecycle.ErrIO)
		}
		data = data[n*frameBytes:]
	}
	return nil
}

// prime queues primePeriods periods of silence on a prepared playback
// PCM. The start threshold sits one period above, so the stream is not
// running yet and an error here is fatal.
func (l *Loop) prime(out PCM) error {
	silence := make([]byte, out.PeriodFrames()*out.FrameBytes())
	for range primePeriods {
		for data := silence; len(data) > 0; {
			n, err := out.WriteFrames(data)
			if err != nil {
				l.logger.Error("Failed to prime playback", "error", err)
				return fmt.Errorf("%w: prime playback: %w", lifecycle.ErrIO, err)
			}
			if n <= 0 {
				return fmt.Errorf("%w: playback accepted no frames", lifecycle.ErrIO)
			}
			data = data[n*out.FrameBytes():]
		}
	}
	return nil
}

// recoverXrun re-prepares p after an xrun. Any other error is fatal.
func (l *Loop) recoverXrun(direction string, p PCM, err error) error {
	if !errors.Is(err, alsa.ErrXrun) {
		l.logger.Error("Audio transfer failed", "direction", direction, "error", err)
		return fmt.Errorf("%w: %s: %w", lifecycle.ErrIO, direction, err)
	}
	metrics.RecordXrun(direction)
	if direction == "capture" {
		l.captureXruns.Add(1)
	} else {
		l.playbackXruns.Add(1)
	}
	l.logger.Warn("Audio xrun, re-preparing", "direction", direction)
	if perr := p.Prepare(); perr != nil {
		l.logger.Error("Failed to re-prepare PCM", "direction", direction, "error", perr)
		return fmt.Errorf("%w: prepare %s: %w", lifecycle.ErrIO, direction, perr)
	}
	return nil
}

// Stats returns a snapshot of the loop counters. Safe to call from any goroutine.
func (l *Loop) Stats() Stats {
	state, _ := l.state.Load().(events.LoopState)
	return Stats{
		State:         state,
		Periods:       l.periods.Load(),
		CaptureXruns:  l.captureXruns.Load(),
		PlaybackXruns: l.playbackXruns.Load(),
	}
}

func (l *Loop) transition(state events.LoopState, err error) {
	l.state.Store(state)
	ev := events.LoopStateChangedEvent{
		Loop:      loopName,
		State:     state,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if l.bus != nil {
		l.bus.Publish(ev)
	}
}

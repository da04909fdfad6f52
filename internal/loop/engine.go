// Package loop copies frames from a V4L2 capture device into a
// double-buffered framebuffer.
//
// Every cycle dequeues a filled capture buffer, copies one frame into the
// working surface, advances the surface indices, flips the display onto the
// surface just written and hands the capture buffer back to the driver.
package loop

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/lifecycle"
	"github.com/smazurov/loopthru/internal/metrics"
	"github.com/smazurov/loopthru/pkg/linuxav/fbdev"
)

const loopName = "video"

// Config describes the devices and geometry of the loop.
type Config struct {
	CaptureDevice  string
	DisplayDevice  string
	Width          int
	Height         int
	BytesPerPixel  int
	CaptureBuffers int
	DisplayBuffers int
	Zoom           fbdev.Zoom
	WaitVSync      bool
}

// DefaultConfig returns a 640x480 UYVY loop from /dev/video0 to /dev/fb1.
func DefaultConfig() Config {
	return Config{
		CaptureDevice:  "/dev/video0",
		DisplayDevice:  "/dev/fb1",
		Width:          640,
		Height:         480,
		BytesPerPixel:  2,
		CaptureBuffers: 3,
		DisplayBuffers: 2,
		Zoom:           fbdev.Zoom1x,
	}
}

// Validate checks the static parts of the configuration.
func (c Config) Validate() error {
	switch {
	case c.CaptureDevice == "":
		return errors.New("capture device is required")
	case c.DisplayDevice == "":
		return errors.New("display device is required")
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	case c.BytesPerPixel <= 0:
		return fmt.Errorf("invalid bytes per pixel %d", c.BytesPerPixel)
	case c.CaptureBuffers < 2:
		return fmt.Errorf("need at least 2 capture buffers, got %d", c.CaptureBuffers)
	case c.DisplayBuffers < 2:
		return fmt.Errorf("need at least 2 display buffers, got %d", c.DisplayBuffers)
	}
	return nil
}

// Publisher receives loop state changes.
type Publisher interface {
	Publish(ev events.Event)
}

// Option configures an Engine.
type Option func(*Engine)

// WithCaptureOpener replaces the V4L2 capture opener.
func WithCaptureOpener(fn CaptureOpener) Option {
	return func(e *Engine) { e.openCapture = fn }
}

// WithDisplayOpener replaces the fbdev display opener.
func WithDisplayOpener(fn DisplayOpener) Option {
	return func(e *Engine) { e.openDisplay = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEventBus publishes loop state changes to bus.
func WithEventBus(bus Publisher) Option {
	return func(e *Engine) { e.bus = bus }
}

// Engine is the capture-to-display loop. Run it once per Engine.
type Engine struct {
	cfg         Config
	openCapture CaptureOpener
	openDisplay DisplayOpener
	logger      *slog.Logger
	bus         Publisher
	stats       counters
}

// NewEngine creates an engine for cfg using the real devices unless
// overridden by opts.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		openCapture: openV4L2,
		openDisplay: fbdevOpener(cfg),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stats.setState(events.LoopStopped)
	return e
}

// Run is the video thread entry point. It returns nil once env is cancelled,
// an error wrapping lifecycle.ErrSetup if a device could not be acquired,
// or one wrapping lifecycle.ErrIO if a device failed mid-stream. Every
// acquired device is released before Run returns.
func (e *Engine) Run(env *lifecycle.Env) error {
	e.transition(events.LoopStarting, nil)

	var res resources
	err := e.run(env, &res)
	if rerr := res.release(e.logger); rerr != nil {
		e.logger.Warn("Video teardown incomplete", "error", rerr)
	}

	if err != nil {
		e.transition(events.LoopFailed, err)
		return err
	}
	e.transition(events.LoopStopped, nil)
	return nil
}

func (e *Engine) run(env *lifecycle.Env, res *resources) error {
	frameSize, err := e.setup(res)
	if err != nil {
		return err
	}
	e.transition(events.LoopRunning, nil)
	return e.cycle(env, res, frameSize)
}

// setup acquires the capture device, then the display device, filling the
// slots of res as it goes, and returns the frame size in bytes.
func (e *Engine) setup(res *resources) (int, error) {
	cfg := e.cfg

	capture, err := e.openCapture(cfg.CaptureDevice, cfg.Width, cfg.Height, cfg.CaptureBuffers)
	if err != nil {
		e.logger.Error("Failed to open capture device", "device", cfg.CaptureDevice, "error", err)
		return 0, fmt.Errorf("%w: open capture %s: %w", lifecycle.ErrSetup, cfg.CaptureDevice, err)
	}
	res.capture = capture

	frameSize := capture.Width() * capture.Height() * cfg.BytesPerPixel
	e.stats.setGeometry(capture.Width(), capture.Height(), frameSize)
	attrs := []any{
		"device", cfg.CaptureDevice,
		"width", capture.Width(),
		"height", capture.Height(),
		"buffers", capture.NumBuffers(),
		"frame_bytes", frameSize,
	}
	if pf, ok := capture.(pixelFormatter); ok {
		attrs = append(attrs, "pixel_format", fourcc(pf.PixelFormat()))
	}
	e.logger.Info("Capture device opened", attrs...)

	display, err := e.openDisplay(cfg.DisplayDevice, cfg.DisplayBuffers, cfg.Width, cfg.Height, cfg.Zoom)
	if err != nil {
		e.logger.Error("Failed to open display device", "device", cfg.DisplayDevice, "error", err)
		return 0, fmt.Errorf("%w: open display %s: %w", lifecycle.ErrSetup, cfg.DisplayDevice, err)
	}
	res.display = display
	e.logger.Info("Display device opened",
		"device", cfg.DisplayDevice,
		"width", display.Width(),
		"height", display.Height(),
		"surfaces", display.NumSurfaces(),
		"zoom", cfg.Zoom.String())

	// Frames are copied as one block, so padded display lines shear the image.
	if st, ok := display.(strider); ok {
		if line := capture.Width() * cfg.BytesPerPixel; st.Stride() != line {
			e.logger.Warn("Display line length differs from the capture line",
				"stride", st.Stride(),
				"capture_line", line)
		}
	}

	if err := checkGeometry(capture, display, frameSize); err != nil {
		e.logger.Error("Capture and display geometry do not match", "error", err)
		return 0, fmt.Errorf("%w: %w", lifecycle.ErrSetup, err)
	}
	return frameSize, nil
}

// checkGeometry verifies that every buffer and surface can hold a frame.
func checkGeometry(capture Capture, display Display, frameSize int) error {
	if frameSize <= 0 {
		return fmt.Errorf("empty frame %dx%d", capture.Width(), capture.Height())
	}
	if n := capture.NumBuffers(); n < 2 {
		return fmt.Errorf("capture provides %d buffers, need at least 2", n)
	}
	if n := display.NumSurfaces(); n < 2 {
		return fmt.Errorf("display provides %d surfaces, need at least 2", n)
	}
	for i := range capture.NumBuffers() {
		if n := len(capture.Buffer(i)); n < frameSize {
			return fmt.Errorf("capture buffer %d holds %d bytes, frame needs %d", i, n, frameSize)
		}
	}
	for i := range display.NumSurfaces() {
		if n := len(display.Surface(i)); n < frameSize {
			return fmt.Errorf("display surface %d holds %d bytes, frame needs %d", i, n, frameSize)
		}
	}
	return nil
}

// cycle runs until env is cancelled or a device fails. The flag is read
// once per iteration, so a cancel that lands during Dequeue takes effect
// after that frame has been shown and its buffer returned.
func (e *Engine) cycle(env *lifecycle.Env, res *resources, frameSize int) error {
	capture, display := res.capture, res.display
	idx := NewIndices(display.NumSurfaces())
	e.stats.setIndices(idx)

	e.logger.Debug("Entering video processing loop")
	for !env.Cancelled() {
		buf, err := capture.Dequeue()
		if err != nil {
			metrics.RecordVideoIOFailure("dequeue")
			e.logger.Error("Failed to dequeue capture buffer", "error", err)
			return fmt.Errorf("%w: dequeue: %w", lifecycle.ErrIO, err)
		}

		copy(display.Surface(idx.Working)[:frameSize], capture.Buffer(buf)[:frameSize])
		idx.Advance()

		flipErr := display.Flip(idx.Displayed)
		// The buffer goes back to the driver even if the flip failed.
		if err := capture.Enqueue(buf); err != nil {
			metrics.RecordVideoIOFailure("enqueue")
			e.logger.Error("Failed to enqueue capture buffer", "buffer", buf, "error", err)
			return errors.Join(fmt.Errorf("%w: enqueue: %w", lifecycle.ErrIO, err), flipErr)
		}
		if flipErr != nil {
			metrics.RecordVideoIOFailure("flip")
			e.logger.Error("Failed to flip display", "surface", idx.Displayed, "error", flipErr)
			return fmt.Errorf("%w: flip: %w", lifecycle.ErrIO, flipErr)
		}

		frame := e.stats.recordFrame(frameSize, idx)
		metrics.RecordFrame(frameSize, idx.Displayed)
		e.logger.Debug("Frame displayed", "frame", frame, "displayed", idx.Displayed, "working", idx.Working)
	}
	e.logger.Debug("Exited video processing loop")
	return nil
}

// Stats returns a snapshot of the loop counters. Safe to call from any goroutine.
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

func (e *Engine) transition(state events.LoopState, err error) {
	e.stats.setState(state)
	ev := events.LoopStateChangedEvent{
		Loop:      loopName,
		State:     state,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

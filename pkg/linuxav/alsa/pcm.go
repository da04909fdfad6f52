//go:build linux

package alsa

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Params are the hardware parameters requested for a PCM.
// Access is always interleaved read/write.
type Params struct {
	Format       int // one of the Format constants
	Channels     int
	Rate         int
	PeriodFrames int
	Periods      int
	StartPeriods int // playback starts once this many periods are queued; 0 starts on the first write
}

// PCM is an open interleaved PCM substream. PCM is not safe for concurrent use.
type PCM struct {
	name       string
	path       string
	stream     Stream
	fd         int
	frameBytes int
	params     Params
	bufferSize int
}

// OpenPCM opens an ALSA hw device for stream and installs params.
// The kernel may refuse a value it cannot provide exactly; the negotiated
// period and buffer sizes are readable from the returned PCM.
func OpenPCM(device string, stream Stream, params Params) (*PCM, error) {
	card, dev, err := ParseALSADevice(device)
	if err != nil {
		return nil, err
	}
	sb := sampleBytes(params.Format)
	if sb == 0 {
		return nil, fmt.Errorf("unsupported sample format %d", params.Format)
	}
	if params.Channels <= 0 || params.Rate <= 0 || params.PeriodFrames <= 0 || params.Periods < 2 {
		return nil, fmt.Errorf("invalid PCM parameters %+v", params)
	}

	path := pcmPath(card, dev, stream)
	// Open non-blocking so a busy device fails fast, then switch to blocking I/O.
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set blocking mode on %s: %w", path, err)
	}

	p := &PCM{
		name:       device,
		path:       path,
		stream:     stream,
		fd:         fd,
		frameBytes: sb * params.Channels,
		params:     params,
	}
	if err := p.install(); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := p.Prepare(); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return p, nil
}

func (p *PCM) install() error {
	hw := hwParamsFor(p.params)
	if err := ioctl(p.fd, sndrvPCMIoctlHwParams, unsafe.Pointer(&hw)); err != nil {
		return fmt.Errorf("SNDRV_PCM_IOCTL_HW_PARAMS %+v on %s: %w", p.params, p.path, err)
	}
	period, _ := hw.getInterval(sndrvPCMHwParamPeriodSize)
	buffer, _ := hw.getInterval(sndrvPCMHwParamBufferSize)
	p.params.PeriodFrames = int(period)
	p.bufferSize = int(buffer)

	sw := swParamsFor(p.stream, p.params.PeriodFrames, p.bufferSize, p.params.StartPeriods)
	if err := ioctl(p.fd, sndrvPCMIoctlSwParams, unsafe.Pointer(&sw)); err != nil {
		return fmt.Errorf("SNDRV_PCM_IOCTL_SW_PARAMS on %s: %w", p.path, err)
	}
	return nil
}

// swParamsFor wakes the caller every period and stops on an xrun. Capture
// starts on the first read; playback once startPeriods periods are queued,
// capped at the buffer size.
func swParamsFor(stream Stream, period, buffer, startPeriods int) sndPCMSwParams {
	start := 1
	if stream == StreamPlayback && startPeriods > 0 {
		start = min(startPeriods*period, buffer)
	}
	return sndPCMSwParams{
		periodStep:     1,
		availMin:       uframes(period),
		startThreshold: uframes(start),
		stopThreshold:  uframes(buffer),
	}
}

// hwParamsFor builds a fully constrained hw_params request.
func hwParamsFor(params Params) sndPCMHwParams {
	var hw sndPCMHwParams
	hw.init()
	hw.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)
	hw.setMask(sndrvPCMHwParamFormat, uint32(params.Format))
	hw.setInterval(sndrvPCMHwParamChannels, uint32(params.Channels))
	hw.setInterval(sndrvPCMHwParamRate, uint32(params.Rate))
	hw.setInterval(sndrvPCMHwParamPeriodSize, uint32(params.PeriodFrames))
	hw.setInterval(sndrvPCMHwParamPeriods, uint32(params.Periods))
	return hw
}

// Prepare readies the PCM for transfers, recovering it after an xrun.
func (p *PCM) Prepare() error {
	if p.fd < 0 {
		return ErrClosed
	}
	if err := ioctl(p.fd, sndrvPCMIoctlPrepare, nil); err != nil {
		return fmt.Errorf("SNDRV_PCM_IOCTL_PREPARE on %s: %w", p.path, err)
	}
	return nil
}

// ReadFrames blocks until len(buf)/FrameBytes frames were captured and
// returns the number of frames read.
func (p *PCM) ReadFrames(buf []byte) (int, error) {
	return p.transfer(sndrvPCMIoctlReadiFrames, buf, "READI")
}

// WriteFrames blocks until the frames in buf were queued for playback and
// returns the number of frames written.
func (p *PCM) WriteFrames(buf []byte) (int, error) {
	return p.transfer(sndrvPCMIoctlWriteiFrames, buf, "WRITEI")
}

func (p *PCM) transfer(req uint, buf []byte, op string) (int, error) {
	if p.fd < 0 {
		return 0, ErrClosed
	}
	frames := len(buf) / p.frameBytes
	if frames == 0 {
		return 0, nil
	}
	x := sndXferi{buf: unsafe.Pointer(&buf[0]), frames: uframes(frames)}
	err := ioctl(p.fd, req, unsafe.Pointer(&x))
	runtime.KeepAlive(buf)
	if err != nil {
		return 0, fmt.Errorf("SNDRV_PCM_IOCTL_%s_FRAMES on %s: %w", op, p.path, err)
	}
	return int(x.result), nil
}

// Drop stops the PCM immediately, discarding pending frames.
func (p *PCM) Drop() error {
	if p.fd < 0 {
		return ErrClosed
	}
	if err := ioctl(p.fd, sndrvPCMIoctlDrop, nil); err != nil {
		return fmt.Errorf("SNDRV_PCM_IOCTL_DROP on %s: %w", p.path, err)
	}
	return nil
}

// Close closes the device. Calling Close more than once is a no-op.
func (p *PCM) Close() error {
	if p.fd < 0 {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	if err != nil {
		return fmt.Errorf("close %s: %w", p.path, err)
	}
	return nil
}

// FrameBytes returns the size of one interleaved frame.
func (p *PCM) FrameBytes() int { return p.frameBytes }

// PeriodFrames returns the negotiated period size in frames.
func (p *PCM) PeriodFrames() int { return p.params.PeriodFrames }

// BufferFrames returns the negotiated ring buffer size in frames.
func (p *PCM) BufferFrames() int { return p.bufferSize }

// Name returns the ALSA device string the PCM was opened with.
func (p *PCM) Name() string { return p.name }

// Stream returns the direction of the PCM.
func (p *PCM) Stream() Stream { return p.stream }

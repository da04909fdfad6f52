//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrClosed is returned by operations on a capture that has been closed.
var ErrClosed = errors.New("v4l2: capture closed")

// Capture is an mmap streaming capture session on a single V4L2 device.
//
// A buffer index returned by Dequeue belongs to the caller until it is
// passed back to Enqueue. Capture is not safe for concurrent use.
type Capture struct {
	path        string
	fd          int
	width       int
	height      int
	pixelFormat uint32
	buffers     [][]byte
	streaming   bool
}

// OpenCapture opens path, negotiates a UYVY format close to width x height,
// maps count driver buffers, queues them all and starts streaming.
// The negotiated geometry is available from Width and Height.
func OpenCapture(path string, width, height, count int) (*Capture, error) {
	return OpenCaptureFormat(path, width, height, PixFmtUYVY, count)
}

// OpenCaptureFormat is OpenCapture with an explicit pixel format.
func OpenCaptureFormat(path string, width, height int, pixelFormat uint32, count int) (*Capture, error) {
	if count < 2 {
		return nil, fmt.Errorf("v4l2: need at least 2 buffers, got %d", count)
	}

	fd, err := openStream(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	c := &Capture{path: path, fd: fd}

	if err := c.setup(width, height, pixelFormat, count); err != nil {
		c.release()
		return nil, err
	}
	return c, nil
}

func (c *Capture) setup(width, height int, pixelFormat uint32, count int) error {
	var capability v4l2Capability
	if err := ioctl(c.fd, vidiocQuerycap, unsafe.Pointer(&capability)); err != nil {
		return fmt.Errorf("VIDIOC_QUERYCAP on %s: %w", c.path, err)
	}
	caps := capability.capabilities
	if caps&capDeviceCaps != 0 {
		caps = capability.deviceCaps
	}
	if caps&capVideoCapture == 0 {
		return fmt.Errorf("%s is not a video capture device", c.path)
	}
	if caps&capStreaming == 0 {
		return fmt.Errorf("%s does not support streaming I/O", c.path)
	}

	format := v4l2Format{typ: bufTypeVideoCapture}
	format.pix = v4l2PixFormat{
		width:       uint32(width),
		height:      uint32(height),
		pixelFormat: pixelFormat,
		field:       fieldAny,
	}
	if err := ioctl(c.fd, vidiocSFmt, unsafe.Pointer(&format)); err != nil {
		return fmt.Errorf("VIDIOC_S_FMT %dx%d on %s: %w", width, height, c.path, err)
	}
	// The driver may adjust the request; read back what it settled on.
	if err := ioctl(c.fd, vidiocGFmt, unsafe.Pointer(&format)); err != nil {
		return fmt.Errorf("VIDIOC_G_FMT on %s: %w", c.path, err)
	}
	c.width = int(format.pix.width)
	c.height = int(format.pix.height)
	c.pixelFormat = format.pix.pixelFormat

	req := v4l2RequestBuffers{
		count:  uint32(count),
		typ:    bufTypeVideoCapture,
		memory: memoryMmap,
	}
	if err := ioctl(c.fd, vidiocReqbufs, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("VIDIOC_REQBUFS %d on %s: %w", count, c.path, err)
	}
	if int(req.count) < count {
		return fmt.Errorf("%s granted %d of %d buffers", c.path, req.count, count)
	}

	c.buffers = make([][]byte, 0, req.count)
	for i := uint32(0); i < req.count; i++ {
		buf := v4l2Buffer{
			index:  i,
			typ:    bufTypeVideoCapture,
			memory: memoryMmap,
		}
		if err := ioctl(c.fd, vidiocQuerybuf, unsafe.Pointer(&buf)); err != nil {
			return fmt.Errorf("VIDIOC_QUERYBUF %d on %s: %w", i, c.path, err)
		}
		mem, err := unix.Mmap(c.fd, int64(buf.offset), int(buf.length),
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			return fmt.Errorf("mmap buffer %d on %s: %w", i, c.path, err)
		}
		c.buffers = append(c.buffers, mem)
	}

	for i := range c.buffers {
		if err := c.Enqueue(i); err != nil {
			return err
		}
	}

	typ := uint32(bufTypeVideoCapture)
	if err := ioctl(c.fd, vidiocStreamon, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("VIDIOC_STREAMON on %s: %w", c.path, err)
	}
	c.streaming = true
	return nil
}

// Dequeue blocks until the driver has filled a buffer and returns its index.
func (c *Capture) Dequeue() (int, error) {
	if c.fd < 0 {
		return -1, ErrClosed
	}
	buf := v4l2Buffer{
		typ:    bufTypeVideoCapture,
		memory: memoryMmap,
	}
	if err := ioctl(c.fd, vidiocDqbuf, unsafe.Pointer(&buf)); err != nil {
		return -1, fmt.Errorf("VIDIOC_DQBUF on %s: %w", c.path, err)
	}
	return int(buf.index), nil
}

// Enqueue hands buffer index back to the driver for refilling.
func (c *Capture) Enqueue(index int) error {
	if c.fd < 0 {
		return ErrClosed
	}
	if index < 0 || index >= len(c.buffers) {
		return fmt.Errorf("v4l2: buffer index %d out of range [0,%d)", index, len(c.buffers))
	}
	buf := v4l2Buffer{
		index:  uint32(index),
		typ:    bufTypeVideoCapture,
		memory: memoryMmap,
	}
	if err := ioctl(c.fd, vidiocQbuf, unsafe.Pointer(&buf)); err != nil {
		return fmt.Errorf("VIDIOC_QBUF %d on %s: %w", index, c.path, err)
	}
	return nil
}

// Buffer returns the mapped memory of buffer index.
func (c *Capture) Buffer(index int) []byte {
	return c.buffers[index]
}

// NumBuffers returns the number of mapped buffers.
func (c *Capture) NumBuffers() int { return len(c.buffers) }

// Width returns the negotiated frame width in pixels.
func (c *Capture) Width() int { return c.width }

// Height returns the negotiated frame height in pixels.
func (c *Capture) Height() int { return c.height }

// PixelFormat returns the negotiated fourcc.
func (c *Capture) PixelFormat() uint32 { return c.pixelFormat }

// Close stops streaming, unmaps every buffer and closes the device.
// Calling Close more than once is a no-op.
func (c *Capture) Close() error {
	if c.fd < 0 {
		return nil
	}
	return c.release()
}

func (c *Capture) release() error {
	var errs []error
	if c.streaming {
		typ := uint32(bufTypeVideoCapture)
		if err := ioctl(c.fd, vidiocStreamoff, unsafe.Pointer(&typ)); err != nil {
			errs = append(errs, fmt.Errorf("VIDIOC_STREAMOFF on %s: %w", c.path, err))
		}
		c.streaming = false
	}
	for i, mem := range c.buffers {
		if err := unix.Munmap(mem); err != nil {
			errs = append(errs, fmt.Errorf("munmap buffer %d on %s: %w", i, c.path, err))
		}
	}
	c.buffers = nil
	if err := unix.Close(c.fd); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", c.path, err))
	}
	c.fd = -1
	return errors.Join(errs...)
}

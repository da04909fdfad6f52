package loop

import "github.com/smazurov/loopthru/pkg/linuxav/fbdev"

// Capture is a streaming capture device with a fixed pool of buffers.
// An index returned by Dequeue stays valid until it is passed to Enqueue.
type Capture interface {
	Dequeue() (int, error)
	Enqueue(index int) error
	Buffer(index int) []byte
	NumBuffers() int
	Width() int
	Height() int
	Close() error
}

// Display is a page-flipped display with a fixed pool of surfaces.
type Display interface {
	Surface(index int) []byte
	NumSurfaces() int
	Flip(index int) error
	Width() int
	Height() int
	Close() error
}

// pixelFormatter is implemented by captures that report the negotiated fourcc.
type pixelFormatter interface {
	PixelFormat() uint32
}

// strider is implemented by displays that report their line length in bytes.
type strider interface {
	Stride() int
}

// fourcc renders a little-endian pixel format code such as YUYV.
func fourcc(f uint32) string {
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

// CaptureOpener opens a capture device at roughly width x height with buffers buffers.
type CaptureOpener func(device string, width, height, buffers int) (Capture, error)

// DisplayOpener opens a display device with surfaces surfaces of width x height.
type DisplayOpener func(device string, surfaces, width, height int, zoom fbdev.Zoom) (Display, error)

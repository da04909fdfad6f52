//go:build linux

package v4l2

// DeviceInfo describes one capture node.
type DeviceInfo struct {
	DevicePath string // /dev/videoN
	DeviceName string // card name
	DeviceID   string // name under /dev/v4l/by-id, or a synthetic one
	Driver     string
	Caps       uint32 // device_caps when reported, else capabilities
}

// Streaming reports whether the node supports mmap streaming I/O.
func (d DeviceInfo) Streaming() bool {
	return d.Caps&capStreaming != 0
}

// FormatInfo is one entry of VIDIOC_ENUM_FMT.
type FormatInfo struct {
	PixelFormat uint32
	FormatName  string
	Emulated    bool // converted in libv4l rather than by the hardware
}

// FourCC returns the format's four-character code.
func (f FormatInfo) FourCC() string {
	return FormatFourCC(f.PixelFormat)
}

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  uint32
	Height uint32
}

// Pixel formats the loop can pass through unchanged.
const (
	PixFmtUYVY   = 0x59565955 // 'UYVY'
	PixFmtYUYV   = 0x56595559 // 'YUYV'
	PixFmtRGB565 = 0x50424752 // 'RGBP'
)

// Values from videodev2.h.
const (
	capVideoCapture = 0x00000001
	capStreaming    = 0x04000000
	capDeviceCaps   = 0x80000000

	fmtFlagEmulated = 0x0002

	frmsizeDiscrete   = 1
	frmsizeContinuous = 2
	frmsizeStepwise   = 3

	bufTypeVideoCapture = 1
	memoryMmap          = 1
	fieldAny            = 0
)

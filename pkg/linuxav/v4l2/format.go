//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// GetFormats returns all supported capture pixel formats for a device.
func GetFormats(devicePath string) ([]FormatInfo, error) {
	fd, err := openQuery(devicePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open device: %w", err)
	}
	defer unix.Close(fd)

	var formats []FormatInfo
	for i := uint32(0); ; i++ {
		desc := v4l2Fmtdesc{index: i, typ: bufTypeVideoCapture}
		if err := ioctl(fd, vidiocEnumFmt, unsafe.Pointer(&desc)); err != nil {
			if errors.Is(err, unix.EINVAL) {
				break // end of enumeration
			}
			return nil, fmt.Errorf("failed to enumerate format %d: %w", i, err)
		}
		formats = append(formats, FormatInfo{
			PixelFormat: desc.pixelFormat,
			FormatName:  cstr(desc.description[:]),
			Emulated:    desc.flags&fmtFlagEmulated != 0,
		})
	}
	return formats, nil
}

// GetResolutions returns the supported frame sizes for a device and pixel format.
// Stepwise and continuous ranges are reported as the common sizes they contain.
func GetResolutions(devicePath string, pixelFormat uint32) ([]Resolution, error) {
	fd, err := openQuery(devicePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open device: %w", err)
	}
	defer unix.Close(fd)

	var resolutions []Resolution
	for i := uint32(0); ; i++ {
		size := v4l2Frmsizeenum{index: i, pixelFormat: pixelFormat}
		if err := ioctl(fd, vidiocEnumFramesizes, unsafe.Pointer(&size)); err != nil {
			if errors.Is(err, unix.EINVAL) {
				break
			}
			if errors.Is(err, unix.ENOTTY) {
				return []Resolution{}, nil
			}
			return nil, fmt.Errorf("failed to enumerate frame size %d: %w", i, err)
		}

		switch size.typ {
		case frmsizeDiscrete:
			resolutions = append(resolutions, Resolution{
				Width:  size.discrete.width,
				Height: size.discrete.height,
			})
		case frmsizeContinuous, frmsizeStepwise:
			return append(resolutions, commonWithin(size.stepwise())...), nil
		}
	}
	return resolutions, nil
}

var commonResolutions = []Resolution{
	{320, 240},
	{640, 480},
	{720, 480},
	{720, 576},
	{800, 600},
	{1024, 768},
	{1280, 720},
	{1920, 1080},
}

// commonWithin returns the common resolutions the driver can produce: in
// range and on the step grid anchored at the minimum.
func commonWithin(s *v4l2FrmsizeStepwise) []Resolution {
	var out []Resolution
	for _, r := range commonResolutions {
		if onGrid(r.Width, s.minWidth, s.maxWidth, s.stepWidth) &&
			onGrid(r.Height, s.minHeight, s.maxHeight, s.stepHeight) {
			out = append(out, r)
		}
	}
	return out
}

// onGrid reports whether v is in [lo, hi] and lo plus a multiple of step.
// A zero step accepts any value in range.
func onGrid(v, lo, hi, step uint32) bool {
	if v < lo || v > hi {
		return false
	}
	return step == 0 || (v-lo)%step == 0
}

// FormatFourCC converts a 4-byte pixel format to a human-readable string.
func FormatFourCC(format uint32) string {
	return string([]byte{
		byte(format),
		byte(format >> 8),
		byte(format >> 16),
		byte(format >> 24),
	})
}

//go:build linux

package devices

import (
	"errors"
	"fmt"

	"github.com/smazurov/loopthru/pkg/linuxav/alsa"
	"github.com/smazurov/loopthru/pkg/linuxav/fbdev"
	"github.com/smazurov/loopthru/pkg/linuxav/v4l2"
)

func list() (Inventory, error) {
	inv := Inventory{Capture: []Capture{}, Display: []Display{}, Audio: []Audio{}}
	var errs []error

	captures, err := v4l2.FindDevices()
	if err != nil {
		errs = append(errs, fmt.Errorf("capture devices: %w", err))
	}
	for _, d := range captures {
		formats, err := captureFormats(d.DevicePath)
		if err != nil {
			errs = append(errs, err)
		}
		inv.Capture = append(inv.Capture, Capture{
			Path:      d.DevicePath,
			Name:      d.DeviceName,
			ID:        d.DeviceID,
			Driver:    d.Driver,
			Streaming: d.Streaming(),
			Formats:   formats,
		})
	}

	displays, err := fbdev.FindDevices()
	if err != nil {
		errs = append(errs, fmt.Errorf("display devices: %w", err))
	}
	for _, d := range displays {
		inv.Display = append(inv.Display, Display{
			Path:         d.DevicePath,
			Name:         d.Name,
			VirtualSize:  d.VirtualSize,
			BitsPerPixel: d.BitsPerPixel,
		})
	}

	for _, stream := range []alsa.Stream{alsa.StreamCapture, alsa.StreamPlayback} {
		pcms, err := alsa.ListDevices(stream)
		if err != nil {
			errs = append(errs, fmt.Errorf("audio devices: %w", err))
			continue
		}
		for _, d := range pcms {
			inv.Audio = append(inv.Audio, Audio{
				Device:      d.ALSADevice,
				Card:        d.CardName,
				Name:        d.DeviceName,
				Direction:   d.Type,
				MinChannels: d.MinChannels,
				MaxChannels: d.MaxChannels,
				Rates:       d.SupportedRates,
			})
		}
	}

	return inv, errors.Join(errs...)
}

// captureFormats lists the pixel formats of path with their frame sizes.
func captureFormats(path string) ([]CaptureFormat, error) {
	formats, err := v4l2.GetFormats(path)
	if err != nil {
		return nil, fmt.Errorf("formats of %s: %w", path, err)
	}

	out := make([]CaptureFormat, 0, len(formats))
	var errs []error
	for _, f := range formats {
		cf := CaptureFormat{FourCC: f.FourCC(), Name: f.FormatName, Emulated: f.Emulated}
		sizes, err := v4l2.GetResolutions(path, f.PixelFormat)
		if err != nil {
			errs = append(errs, fmt.Errorf("frame sizes of %s %s: %w", path, cf.FourCC, err))
		}
		for _, r := range sizes {
			cf.Sizes = append(cf.Sizes, fmt.Sprintf("%dx%d", r.Width, r.Height))
		}
		out = append(out, cf)
	}
	return out, errors.Join(errs...)
}

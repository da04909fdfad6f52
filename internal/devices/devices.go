// Package devices lists the capture, display and audio devices the loops
// can use and watches the configured ones for hotplug removal.
package devices

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsupported is returned on platforms without V4L2, fbdev and ALSA.
var ErrUnsupported = errors.New("device enumeration requires linux")

// Capture describes a V4L2 capture node.
type Capture struct {
	Path      string          `json:"path" example:"/dev/video0" doc:"Device node"`
	Name      string          `json:"name" example:"USB Video" doc:"Card name reported by the driver"`
	ID        string          `json:"id" doc:"Stable identifier"`
	Driver    string          `json:"driver" example:"uvcvideo" doc:"Kernel driver"`
	Streaming bool            `json:"streaming" doc:"Whether mmap streaming is supported"`
	Formats   []CaptureFormat `json:"formats,omitempty" doc:"Pixel formats and frame sizes"`
}

// CaptureFormat is one pixel format of a capture node.
type CaptureFormat struct {
	FourCC   string   `json:"fourcc" example:"UYVY"`
	Name     string   `json:"name" example:"UYVY 4:2:2"`
	Emulated bool     `json:"emulated,omitempty" doc:"Converted in software"`
	Sizes    []string `json:"sizes,omitempty" doc:"Frame sizes, common sizes only for stepwise ranges"`
}

// Display describes a framebuffer device.
type Display struct {
	Path         string `json:"path" example:"/dev/fb1" doc:"Device node"`
	Name         string `json:"name" doc:"Driver name"`
	VirtualSize  string `json:"virtual_size" example:"640,960" doc:"Virtual resolution"`
	BitsPerPixel int    `json:"bits_per_pixel" example:"16" doc:"Color depth"`
}

// Audio describes an ALSA PCM device.
type Audio struct {
	Device      string `json:"device" example:"hw:0,0" doc:"ALSA device string"`
	Card        string `json:"card" doc:"Card name"`
	Name        string `json:"name" doc:"PCM name"`
	Direction   string `json:"direction" example:"capture" doc:"capture or playback"`
	MinChannels int    `json:"min_channels"`
	MaxChannels int    `json:"max_channels"`
	Rates       []int  `json:"rates,omitempty" doc:"Supported sample rates"`
}

// Inventory is everything List found. A category that could not be read
// is empty and its error is joined into the error returned by List.
type Inventory struct {
	Capture []Capture `json:"capture"`
	Display []Display `json:"display"`
	Audio   []Audio   `json:"audio"`
}

// List enumerates every device class.
func List() (Inventory, error) {
	return list()
}

// ResolveDevicePath converts a capture device ID to a device node path.
// Full paths are returned unchanged.
func ResolveDevicePath(deviceID string) (string, error) {
	if strings.HasPrefix(deviceID, "/dev/") {
		return deviceID, nil
	}

	// Try by-id first (for USB devices)
	if strings.HasPrefix(deviceID, "usb-") {
		devicePath := "/dev/v4l/by-id/" + deviceID
		if _, err := os.Stat(devicePath); err == nil {
			return devicePath, nil
		}
	}

	// Try by-path (for platform devices and USB devices without by-id)
	if strings.HasPrefix(deviceID, "platform-") || strings.HasPrefix(deviceID, "usb-") {
		devicePath := "/dev/v4l/by-path/" + deviceID
		if _, err := os.Stat(devicePath); err == nil {
			return devicePath, nil
		}
	}

	return "", fmt.Errorf("no stable symlink found for device ID: %s", deviceID)
}

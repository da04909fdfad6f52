//go:build linux

package fbdev

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const sysClassGraphics = "/sys/class/graphics"

// DeviceInfo describes a framebuffer device as reported by sysfs.
type DeviceInfo struct {
	DevicePath   string
	Name         string
	VirtualSize  string // "xres,yres_virtual"
	BitsPerPixel int
}

// FindDevices lists the framebuffer devices on the system.
func FindDevices() ([]DeviceInfo, error) {
	return findDevices(sysClassGraphics)
}

func findDevices(root string) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []DeviceInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read graphics class directory: %w", err)
	}

	var devices []DeviceInfo
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "fb") {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		bpp, _ := strconv.Atoi(readAttr(dir, "bits_per_pixel"))
		devices = append(devices, DeviceInfo{
			DevicePath:   "/dev/" + entry.Name(),
			Name:         readAttr(dir, "name"),
			VirtualSize:  readAttr(dir, "virtual_size"),
			BitsPerPixel: bpp,
		})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].DevicePath < devices[j].DevicePath })
	return devices, nil
}

func readAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

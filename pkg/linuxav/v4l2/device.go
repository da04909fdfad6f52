//go:build linux

package v4l2

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	sysClassVideo = "/sys/class/video4linux"
	devV4L2ByID   = "/dev/v4l/by-id"
)

// FindDevices lists the nodes under /sys/class/video4linux that can
// capture. Nodes that fail to answer VIDIOC_QUERYCAP are skipped.
func FindDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(sysClassVideo)
	if errors.Is(err, fs.ErrNotExist) {
		return []DeviceInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sysClassVideo, err)
	}

	found := []DeviceInfo{}
	for _, e := range entries {
		info, err := probe(e.Name())
		if err != nil {
			slog.Debug("Skipping video node", "node", e.Name(), "error", err)
			continue
		}
		if info.Caps&capVideoCapture != 0 {
			found = append(found, info)
		}
	}
	return found, nil
}

// probe queries /dev/<node> and resolves its stable ID.
func probe(node string) (DeviceInfo, error) {
	path := "/dev/" + node
	c, err := queryCapability(path)
	if err != nil {
		return DeviceInfo{}, err
	}

	index := sysfsIndex(node)
	id := stableID(node, index)
	if id == "" {
		id = syntheticID(cstr(c.busInfo[:]), index)
	}
	return DeviceInfo{
		DevicePath: path,
		DeviceName: cstr(c.card[:]),
		DeviceID:   id,
		Driver:     cstr(c.driver[:]),
		Caps:       effectiveCaps(c),
	}, nil
}

func queryCapability(path string) (*v4l2Capability, error) {
	fd, err := openQuery(path)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	var c v4l2Capability
	if err := ioctl(fd, vidiocQuerycap, unsafe.Pointer(&c)); err != nil {
		return nil, fmt.Errorf("VIDIOC_QUERYCAP %s: %w", path, err)
	}
	return &c, nil
}

// effectiveCaps prefers the per-node capabilities when the driver has them.
func effectiveCaps(c *v4l2Capability) uint32 {
	if c.capabilities&capDeviceCaps != 0 {
		return c.deviceCaps
	}
	return c.capabilities
}

// syntheticID mimics the udev by-id naming for nodes without a link.
func syntheticID(busInfo string, index int) string {
	if !strings.HasPrefix(busInfo, "usb-") {
		busInfo = "platform-" + busInfo
	}
	return busInfo + "-video-index" + strconv.Itoa(index)
}

// stableID returns the /dev/v4l/by-id link that points at node.
func stableID(node string, index int) string {
	links, err := os.ReadDir(devV4L2ByID)
	if err != nil {
		return ""
	}
	suffix := "-video-index" + strconv.Itoa(index)
	for _, l := range links {
		if l.Type()&fs.ModeSymlink == 0 || !strings.HasSuffix(l.Name(), suffix) {
			continue
		}
		if target, err := os.Readlink(filepath.Join(devV4L2ByID, l.Name())); err == nil && filepath.Base(target) == node {
			return l.Name()
		}
	}
	return ""
}

// sysfsIndex reads the node's index attribute, 0 when unreadable.
func sysfsIndex(node string) int {
	data, err := os.ReadFile(filepath.Join(sysClassVideo, node, "index"))
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return n
}

// cstr converts a NUL-terminated byte array to a string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

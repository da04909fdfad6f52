//go:build linux

// Package hotplug reads kernel uevents from the NETLINK_KOBJECT_UEVENT
// socket without cgo or libudev.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sys/unix"
)

// Actions the device watcher cares about.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// Subsystems of the capture, display and audio nodes.
const (
	SubsystemVideo4Linux = "video4linux"
	SubsystemGraphics    = "graphics"
	SubsystemSound       = "sound"
)

// kernelGroup is the multicast group the kernel itself sends to. udevd
// rebroadcasts on group 2 with a binary header; those are not read.
const kernelGroup = 1

// pollInterval bounds how long Run takes to notice ctx being done.
const pollInterval = 500 // ms

// Event is one kernel uevent.
type Event struct {
	Action    string            // add, remove, change, ...
	KObj      string            // /devices/... path of the kernel object
	Subsystem string            // SUBSYSTEM
	DevName   string            // DEVNAME relative to /dev, empty for non-node objects
	Seqnum    string            // SEQNUM
	Env       map[string]string // every KEY=VALUE pair
}

// Node returns the device node the event refers to, or "" when the
// object has none.
func (e Event) Node() string {
	if e.DevName == "" {
		return ""
	}
	if strings.HasPrefix(e.DevName, "/") {
		return path.Clean(e.DevName)
	}
	return path.Join("/dev", e.DevName)
}

// Monitor is a bound uevent socket.
type Monitor struct {
	fd         int
	subsystems map[string]bool
}

// NewMonitor opens the uevent socket. Events are limited to subsystems;
// with none given every event passes.
func NewMonitor(subsystems ...string) (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, fmt.Errorf("uevent socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: kernelGroup}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind uevent socket: %w", err)
	}

	m := &Monitor{fd: fd, subsystems: make(map[string]bool, len(subsystems))}
	for _, s := range subsystems {
		m.subsystems[s] = true
	}
	return m, nil
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// wants reports whether ev passes the subsystem filter.
func (m *Monitor) wants(ev *Event) bool {
	return len(m.subsystems) == 0 || m.subsystems[ev.Subsystem]
}

// Run delivers matching events until ctx is done or the socket fails.
// events is closed when Run returns.
func (m *Monitor) Run(ctx context.Context, events chan<- Event) error {
	defer close(events)

	buf := make([]byte, 8192)
	fds := []unix.PollFd{{Fd: int32(m.fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := unix.Poll(fds, pollInterval)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll uevent socket: %w", err)
		}
		if n == 0 {
			continue
		}

		n, _, err = unix.Recvfrom(m.fd, buf, 0)
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ENOBUFS):
			// The kernel dropped events; later ones are still valid.
			continue
		case err != nil:
			return fmt.Errorf("read uevent: %w", err)
		}

		ev := ParseUEvent(buf[:n])
		if ev == nil || !m.wants(ev) {
			continue
		}

		select {
		case events <- *ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ParseUEvent decodes a kernel message of the form
// "ACTION@KOBJ\0KEY=VALUE\0...". It returns nil for anything else,
// including udevd's libudev-framed messages.
func ParseUEvent(data []byte) *Event {
	fields := bytes.Split(data, []byte{0})
	if len(fields) == 0 || bytes.HasPrefix(data, []byte("libudev")) {
		return nil
	}

	action, kobj, ok := strings.Cut(string(fields[0]), "@")
	if !ok || action == "" {
		return nil
	}

	ev := &Event{Action: action, KObj: kobj, Env: make(map[string]string)}
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(string(f), "=")
		if !ok || key == "" {
			continue
		}
		ev.Env[key] = value
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		case "SEQNUM":
			ev.Seqnum = value
		}
	}
	return ev
}

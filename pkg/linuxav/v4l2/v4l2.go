//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2) API
// for mmap streaming capture and device enumeration.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Streaming Capture
//
// OpenCapture negotiates the format, maps the driver buffers and starts
// streaming. Each filled buffer is claimed with Dequeue and handed back
// with Enqueue once consumed:
//
//	c, err := v4l2.OpenCapture("/dev/video0", 640, 480, 3)
//	defer c.Close()
//	for {
//	    idx, err := c.Dequeue()
//	    frame := c.Buffer(idx)
//	    // consume frame
//	    err = c.Enqueue(idx)
//	}
//
// # Device Enumeration
//
// Use FindDevices to discover all V4L2 video capture devices:
//
//	devices, err := v4l2.FindDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s\n", dev.DevicePath, dev.DeviceName)
//	}
package v4l2

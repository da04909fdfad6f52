// Package alsa provides pure Go bindings to the ALSA (Advanced Linux Sound
// Architecture) PCM API for interleaved capture and playback, plus device
// enumeration.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Streaming
//
//	in, err := alsa.OpenPCM("hw:0,0", alsa.StreamCapture, params)
//	out, err := alsa.OpenPCM("hw:0,0", alsa.StreamPlayback, params)
//	buf := make([]byte, in.PeriodFrames()*in.FrameBytes())
//	n, err := in.ReadFrames(buf)
//	if errors.Is(err, alsa.ErrXrun) {
//	    err = in.Prepare()
//	}
//	_, err = out.WriteFrames(buf[:n*in.FrameBytes()])
//
// # Device Enumeration
//
//	devices, err := alsa.ListDevices(alsa.StreamCapture)
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s (%s)\n", dev.ALSADevice, dev.DeviceName, dev.CardName)
//	}
package alsa

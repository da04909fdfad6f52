package alsa

import (
	"errors"
	"syscall"
)

// ErrXrun is matched by errors.Is when a transfer failed with an overrun
// (capture) or underrun (playback). The PCM must be prepared again.
var ErrXrun = syscall.EPIPE

// ErrClosed is returned by operations on a PCM that has been closed.
var ErrClosed = errors.New("alsa: pcm closed")

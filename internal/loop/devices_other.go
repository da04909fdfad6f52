//go:build !linux

package loop

import (
	"errors"

	"github.com/smazurov/loopthru/pkg/linuxav/fbdev"
)

var errUnsupported = errors.New("V4L2 capture and fbdev display require linux")

func openV4L2(string, int, int, int) (Capture, error) {
	return nil, errUnsupported
}

func fbdevOpener(Config) DisplayOpener {
	return func(string, int, int, int, fbdev.Zoom) (Display, error) {
		return nil, errUnsupported
	}
}

//go:build linux

package loop

import (
	"github.com/smazurov/loopthru/pkg/linuxav/fbdev"
	"github.com/smazurov/loopthru/pkg/linuxav/v4l2"
)

var (
	_ pixelFormatter = (*v4l2.Capture)(nil)
	_ strider        = (*fbdev.Display)(nil)
)

func openV4L2(device string, width, height, buffers int) (Capture, error) {
	c, err := v4l2.OpenCapture(device, width, height, buffers)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func fbdevOpener(cfg Config) DisplayOpener {
	return func(device string, surfaces, width, height int, zoom fbdev.Zoom) (Display, error) {
		d, err := fbdev.Open(device, fbdev.Config{
			Surfaces:     surfaces,
			Width:        width,
			Height:       height,
			BitsPerPixel: cfg.BytesPerPixel * 8,
			Zoom:         zoom,
			WaitVSync:    cfg.WaitVSync,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

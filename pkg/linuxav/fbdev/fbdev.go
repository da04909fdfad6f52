//go:build linux

// Package fbdev drives a Linux framebuffer device as a pool of page-flipped
// surfaces.
//
// The virtual screen is resized to hold Surfaces screens stacked vertically,
// the whole region is mapped once, and Flip pans the visible window onto a
// surface. The screen configuration seen at Open is restored by Close.
//
//	d, err := fbdev.Open("/dev/fb1", fbdev.Config{Surfaces: 2, Width: 640, Height: 480})
//	defer d.Close()
//	copy(d.Surface(1), frame)
//	err = d.Flip(1)
package fbdev

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrClosed is returned by operations on a display that has been closed.
var ErrClosed = errors.New("fbdev: display closed")

// Config describes the requested display layout.
type Config struct {
	Surfaces     int  // number of page-flipped surfaces, at least 2
	Width        int  // visible width in pixels; 0 keeps the current mode
	Height       int  // visible height in pixels; 0 keeps the current mode
	BitsPerPixel int  // 0 keeps the current depth
	Zoom         Zoom // OSD zoom, only applied when not 1x
	Window       uint32
	WaitVSync    bool // wait for vertical sync after each pan
}

// Display is an open framebuffer split into equally sized surfaces.
// Display is not safe for concurrent use.
type Display struct {
	path     string
	fd       int
	original fbVarScreeninfo
	current  fbVarScreeninfo
	stride   int
	mem      []byte
	surfaces [][]byte
	vsync    bool
}

// Open configures path for cfg.Surfaces vertically stacked screens and maps them.
func Open(path string, cfg Config) (*Display, error) {
	if cfg.Surfaces < 2 {
		return nil, fmt.Errorf("fbdev: need at least 2 surfaces, got %d", cfg.Surfaces)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	d := &Display{path: path, fd: fd, vsync: cfg.WaitVSync}

	if err := ioctl(fd, fbioGetVscreeninfo, unsafe.Pointer(&d.original)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("FBIOGET_VSCREENINFO on %s: %w", path, err)
	}

	if err := d.setup(cfg); err != nil {
		d.release()
		return nil, err
	}
	return d, nil
}

func (d *Display) setup(cfg Config) error {
	want := layout(d.original, cfg)
	if err := ioctl(d.fd, fbioPutVscreeninfo, unsafe.Pointer(&want)); err != nil {
		return fmt.Errorf("FBIOPUT_VSCREENINFO %dx%d x%d on %s: %w",
			want.xres, want.yres, cfg.Surfaces, d.path, err)
	}
	if err := ioctl(d.fd, fbioGetVscreeninfo, unsafe.Pointer(&d.current)); err != nil {
		return fmt.Errorf("FBIOGET_VSCREENINFO on %s: %w", d.path, err)
	}

	var fix fbFixScreeninfo
	if err := ioctl(d.fd, fbioGetFscreeninfo, unsafe.Pointer(&fix)); err != nil {
		return fmt.Errorf("FBIOGET_FSCREENINFO on %s: %w", d.path, err)
	}
	d.stride = int(fix.lineLength)

	surfaceSize, total, err := mapping(d.current, d.stride, cfg.Surfaces, int(fix.smemLen))
	if err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}

	mem, err := unix.Mmap(d.fd, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap %d bytes on %s: %w", total, d.path, err)
	}
	d.mem = mem
	d.surfaces = split(mem, surfaceSize, cfg.Surfaces)

	if cfg.Zoom != Zoom1x {
		zp := zoomParams{windowID: cfg.Window, zoomH: uint32(cfg.Zoom), zoomV: uint32(cfg.Zoom)}
		if err := ioctl(d.fd, fbioSetZoom, unsafe.Pointer(&zp)); err != nil {
			return fmt.Errorf("FBIO_SETZOOM %s on %s: %w", cfg.Zoom, d.path, err)
		}
	}
	return nil
}

// layout derives the requested screen info from the current one.
func layout(orig fbVarScreeninfo, cfg Config) fbVarScreeninfo {
	v := orig
	if cfg.Width > 0 {
		v.xres = uint32(cfg.Width)
	}
	if cfg.Height > 0 {
		v.yres = uint32(cfg.Height)
	}
	if cfg.BitsPerPixel > 0 {
		v.bitsPerPixel = uint32(cfg.BitsPerPixel)
	}
	v.xresVirtual = v.xres
	v.yresVirtual = v.yres * uint32(cfg.Surfaces)
	v.xoffset = 0
	v.yoffset = 0
	v.activate = fbActivateNow
	return v
}

// mapping validates the negotiated geometry against the device memory and
// returns the size of one surface and of the whole mapping.
func mapping(v fbVarScreeninfo, stride, surfaces, smemLen int) (int, int, error) {
	if v.yresVirtual < v.yres*uint32(surfaces) {
		return 0, 0, fmt.Errorf("virtual height %d cannot hold %d screens of %d lines",
			v.yresVirtual, surfaces, v.yres)
	}
	if minStride := int(v.xres) * int(v.bitsPerPixel) / 8; stride < minStride {
		return 0, 0, fmt.Errorf("line length %d shorter than %d visible bytes", stride, minStride)
	}
	surfaceSize := stride * int(v.yres)
	total := surfaceSize * surfaces
	if smemLen > 0 && total > smemLen {
		return 0, 0, fmt.Errorf("%d surfaces need %d bytes, device has %d", surfaces, total, smemLen)
	}
	return surfaceSize, total, nil
}

func split(mem []byte, size, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = mem[i*size : (i+1)*size : (i+1)*size]
	}
	return out
}

// Surface returns the memory of surface index.
func (d *Display) Surface(index int) []byte {
	return d.surfaces[index]
}

// NumSurfaces returns the number of surfaces in the pool.
func (d *Display) NumSurfaces() int { return len(d.surfaces) }

// Width returns the visible width in pixels.
func (d *Display) Width() int { return int(d.current.xres) }

// Height returns the visible height in pixels.
func (d *Display) Height() int { return int(d.current.yres) }

// BytesPerPixel returns the size of one pixel.
func (d *Display) BytesPerPixel() int { return int(d.current.bitsPerPixel) / 8 }

// Stride returns the length of one line in bytes, padding included.
func (d *Display) Stride() int { return d.stride }

// Flip pans the visible window onto surface index.
func (d *Display) Flip(index int) error {
	if d.fd < 0 {
		return ErrClosed
	}
	if index < 0 || index >= len(d.surfaces) {
		return fmt.Errorf("fbdev: surface index %d out of range [0,%d)", index, len(d.surfaces))
	}
	v := d.current
	v.xoffset = 0
	v.yoffset = uint32(index) * v.yres
	if err := ioctl(d.fd, fbioPanDisplay, unsafe.Pointer(&v)); err != nil {
		return fmt.Errorf("FBIOPAN_DISPLAY %d on %s: %w", index, d.path, err)
	}
	d.current.yoffset = v.yoffset

	if d.vsync {
		var crtc uint32
		if err := ioctl(d.fd, fbioWaitForVsync, unsafe.Pointer(&crtc)); err != nil {
			return fmt.Errorf("FBIO_WAITFORVSYNC on %s: %w", d.path, err)
		}
	}
	return nil
}

// Close unmaps the surfaces, restores the original screen info and closes
// the device. Calling Close more than once is a no-op.
func (d *Display) Close() error {
	if d.fd < 0 {
		return nil
	}
	return d.release()
}

func (d *Display) release() error {
	var errs []error
	if d.mem != nil {
		if err := unix.Munmap(d.mem); err != nil {
			errs = append(errs, fmt.Errorf("munmap %s: %w", d.path, err))
		}
		d.mem = nil
		d.surfaces = nil
	}
	restore := d.original
	if err := ioctl(d.fd, fbioPutVscreeninfo, unsafe.Pointer(&restore)); err != nil {
		errs = append(errs, fmt.Errorf("restore screen info on %s: %w", d.path, err))
	}
	if err := unix.Close(d.fd); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", d.path, err))
	}
	d.fd = -1
	return errors.Join(errs...)
}

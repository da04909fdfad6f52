//go:build linux

package fbdev

import "unsafe"

var (
	_ [160]byte = [unsafe.Sizeof(fbVarScreeninfo{})]byte{}
	_ [12]byte  = [unsafe.Sizeof(zoomParams{})]byte{}
)

// IOCTL constants from linux/fb.h and the DaVinci OSD driver.
const (
	fbioGetVscreeninfo = 0x4600
	fbioPutVscreeninfo = 0x4601
	fbioGetFscreeninfo = 0x4602
	fbioPanDisplay     = 0x4606
	fbioWaitForVsync   = 0x40044620
	fbioSetZoom        = 0x400c4624
)

const fbActivateNow = 0

type fbBitfield struct {
	offset   uint32
	length   uint32
	msbRight uint32
}

// fbVarScreeninfo has size 160 bytes on every architecture.
type fbVarScreeninfo struct {
	xres         uint32
	yres         uint32
	xresVirtual  uint32
	yresVirtual  uint32
	xoffset      uint32
	yoffset      uint32
	bitsPerPixel uint32
	grayscale    uint32
	red          fbBitfield
	green        fbBitfield
	blue         fbBitfield
	transp       fbBitfield
	nonstd       uint32
	activate     uint32
	height       uint32
	width        uint32
	accelFlags   uint32
	pixclock     uint32
	leftMargin   uint32
	rightMargin  uint32
	upperMargin  uint32
	lowerMargin  uint32
	hsyncLen     uint32
	vsyncLen     uint32
	sync         uint32
	vmode        uint32
	rotate       uint32
	colorspace   uint32
	reserved     [4]uint32
}

// zoomParams is the argument of FBIO_SETZOOM.
type zoomParams struct {
	windowID uint32
	zoomH    uint32
	zoomV    uint32
}

//go:build linux && (amd64 || arm64)

package fbdev

import "unsafe"

var _ [80]byte = [unsafe.Sizeof(fbFixScreeninfo{})]byte{}

// fbFixScreeninfo has size 80 bytes. smem_start and mmio_start are unsigned long.
type fbFixScreeninfo struct {
	id           [16]byte  // offset 0
	smemStart    uint64    // offset 16
	smemLen      uint32    // offset 24
	typ          uint32    // offset 28
	typeAux      uint32    // offset 32
	visual       uint32    // offset 36
	xpanstep     uint16    // offset 40
	ypanstep     uint16    // offset 42
	ywrapstep    uint16    // offset 44
	_            uint16    // padding
	lineLength   uint32    // offset 48
	_            uint32    // padding
	mmioStart    uint64    // offset 56
	mmioLen      uint32    // offset 64
	accel        uint32    // offset 68
	capabilities uint16    // offset 72
	reserved     [2]uint16 // offset 74
}

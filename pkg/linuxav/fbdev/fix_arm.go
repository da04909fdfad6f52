//go:build linux && arm

package fbdev

import "unsafe"

var _ [68]byte = [unsafe.Sizeof(fbFixScreeninfo{})]byte{}

// fbFixScreeninfo has size 68 bytes on 32-bit ARM.
type fbFixScreeninfo struct {
	id           [16]byte
	smemStart    uint32
	smemLen      uint32
	typ          uint32
	typeAux      uint32
	visual       uint32
	xpanstep     uint16
	ypanstep     uint16
	ywrapstep    uint16
	_            uint16
	lineLength   uint32
	mmioStart    uint32
	mmioLen      uint32
	accel        uint32
	capabilities uint16
	reserved     [2]uint16
}

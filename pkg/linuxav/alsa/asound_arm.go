//go:build linux && arm

package alsa

import "unsafe"

// hw_params is 604 bytes, sw_params 104 and snd_xferi 12 on 32-bit ARM.
var (
	_ [604]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [104]byte = [unsafe.Sizeof(sndPCMSwParams{})]byte{}
	_ [12]byte  = [unsafe.Sizeof(sndXferi{})]byte{}
)

type (
	uframes uint32
	sframes int32
)

const (
	sndrvPCMIoctlHwRefine     = 0xc25c4110
	sndrvPCMIoctlHwParams     = 0xc25c4111
	sndrvPCMIoctlSwParams     = 0xc0684113
	sndrvPCMIoctlWriteiFrames = 0x400c4150
	sndrvPCMIoctlReadiFrames  = 0x800c4151
)

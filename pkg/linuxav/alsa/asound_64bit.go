//go:build linux && (amd64 || arm64)

package alsa

import "unsafe"

var (
	_ [608]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [136]byte = [unsafe.Sizeof(sndPCMSwParams{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(sndXferi{})]byte{}
)

type (
	uframes uint64
	sframes int64
)

// PCM IOCTLs whose argument embeds a snd_pcm_uframes_t.
const (
	sndrvPCMIoctlHwRefine     = 0xc2604110
	sndrvPCMIoctlHwParams     = 0xc2604111
	sndrvPCMIoctlSwParams     = 0xc0884113
	sndrvPCMIoctlWriteiFrames = 0x40184150
	sndrvPCMIoctlReadiFrames  = 0x80184151
)

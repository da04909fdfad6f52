//go:build linux

package alsa

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ListDevices returns every PCM that has a substream in direction stream.
// Cards are probed through /dev/snd/controlC0, C1, ... until one is missing.
func ListDevices(stream Stream) ([]Device, error) {
	var out []Device
	for card := 0; ; card++ {
		fd, err := unix.Open(fmt.Sprintf("/dev/snd/controlC%d", card), unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if errors.Is(err, unix.ENOENT) {
			return out, nil
		}
		if err != nil {
			continue
		}
		out = append(out, listCard(fd, card, stream)...)
		_ = unix.Close(fd)
	}
}

// listCard walks the PCM devices of one card through its control node.
func listCard(ctl, card int, stream Stream) []Device {
	var info sndCtlCardInfo
	if ioctl(ctl, sndrvCtlIoctlCardInfo, unsafe.Pointer(&info)) != nil {
		return nil
	}

	var out []Device
	for dev := int32(-1); ; {
		if ioctl(ctl, sndrvCtlIoctlPCMNextDevice, unsafe.Pointer(&dev)) != nil || dev < 0 {
			return out
		}
		pcm := sndPCMInfo{device: uint32(dev), stream: int32(stream)}
		if ioctl(ctl, sndrvCtlIoctlPCMInfo, unsafe.Pointer(&pcm)) != nil {
			continue // no substream in this direction
		}

		d := Device{
			CardNumber:   card,
			CardID:       cstr(info.id[:]),
			CardName:     cstr(info.longname[:]),
			DeviceNumber: int(dev),
			DeviceName:   cstr(pcm.name[:]),
			Type:         stream.String(),
			ALSADevice:   FormatALSADevice(card, int(dev)),
		}
		if hw, err := refineAll(card, int(dev), stream); err == nil {
			describe(hw, &d)
		}
		out = append(out, d)
	}
}

// refineAll opens the PCM and asks the driver to narrow an unconstrained
// interleaved configuration space.
func refineAll(card, device int, stream Stream) (*sndPCMHwParams, error) {
	fd, err := unix.Open(pcmPath(card, device, stream), unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	hw := &sndPCMHwParams{}
	hw.init()
	hw.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)
	if err := ioctl(fd, sndrvPCMIoctlHwRefine, unsafe.Pointer(hw)); err != nil {
		return nil, err
	}
	return hw, nil
}

// describe fills the capability fields of d from a refined space. Rates
// are reported as the common rates inside the refined range.
func describe(hw *sndPCMHwParams, d *Device) {
	lo, hi := hw.getInterval(sndrvPCMHwParamChannels)
	d.MinChannels, d.MaxChannels = int(lo), int(hi)

	lo, hi = hw.getInterval(sndrvPCMHwParamRate)
	d.SupportedRates = nil
	for _, r := range CommonSampleRates {
		if uint32(r) >= lo && uint32(r) <= hi {
			d.SupportedRates = append(d.SupportedRates, r)
		}
	}

	d.SupportedFormats = nil
	for _, f := range CommonFormats {
		if hw.checkMask(sndrvPCMHwParamFormat, uint32(f)) {
			d.SupportedFormats = append(d.SupportedFormats, FormatName(f))
		}
	}

	lo, hi = hw.getInterval(sndrvPCMHwParamBufferSize)
	d.MinBufferSize, d.MaxBufferSize = int(lo), int(hi)
	lo, hi = hw.getInterval(sndrvPCMHwParamPeriodSize)
	d.MinPeriodSize, d.MaxPeriodSize = int(lo), int(hi)
}

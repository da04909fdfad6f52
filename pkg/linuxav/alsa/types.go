package alsa

import (
	"fmt"
	"strconv"
	"strings"
)

// Stream selects the direction of a PCM.
type Stream int

// Stream types
const (
	StreamPlayback Stream = 0
	StreamCapture  Stream = 1
)

func (s Stream) String() string {
	if s == StreamCapture {
		return "capture"
	}
	return "playback"
}

// suffix is the letter the kernel appends to PCM device nodes.
func (s Stream) suffix() byte {
	if s == StreamCapture {
		return 'c'
	}
	return 'p'
}

// Device represents an ALSA PCM device.
type Device struct {
	CardNumber       int
	CardID           string
	CardName         string
	DeviceNumber     int
	DeviceName       string
	Type             string // "capture" or "playback"
	ALSADevice       string // ALSA device string (e.g., "hw:0,0")
	SupportedRates   []int
	MinChannels      int
	MaxChannels      int
	SupportedFormats []string
	MinBufferSize    int
	MaxBufferSize    int
	MinPeriodSize    int
	MaxPeriodSize    int
}

// FormatALSADevice creates an ALSA device string from card and device numbers.
func FormatALSADevice(cardNum, deviceNum int) string {
	return "hw:" + strconv.Itoa(cardNum) + "," + strconv.Itoa(deviceNum)
}

// ParseALSADevice splits "hw:C,D" (or "hw:C", device 0) into card and device numbers.
func ParseALSADevice(s string) (card, device int, err error) {
	rest, ok := strings.CutPrefix(s, "hw:")
	if !ok {
		return 0, 0, fmt.Errorf("unsupported ALSA device %q: want hw:CARD,DEVICE", s)
	}
	cardStr, devStr, hasDev := strings.Cut(rest, ",")
	if card, err = strconv.Atoi(cardStr); err != nil || card < 0 {
		return 0, 0, fmt.Errorf("invalid card in ALSA device %q", s)
	}
	if hasDev {
		if device, err = strconv.Atoi(devStr); err != nil || device < 0 {
			return 0, 0, fmt.Errorf("invalid device in ALSA device %q", s)
		}
	}
	return card, device, nil
}

// DevicePath returns the PCM device node behind an ALSA "hw:C,D" string.
func DevicePath(device string, stream Stream) (string, error) {
	card, dev, err := ParseALSADevice(device)
	if err != nil {
		return "", err
	}
	return pcmPath(card, dev, stream), nil
}

func pcmPath(card, device int, stream Stream) string {
	return fmt.Sprintf("/dev/snd/pcmC%dD%d%c", card, device, stream.suffix())
}

// PCM format constants
const (
	FormatS8      = 0
	FormatU8      = 1
	FormatS16LE   = 2
	FormatS16BE   = 3
	FormatS24LE   = 6
	FormatS24BE   = 7
	FormatS32LE   = 10
	FormatS32BE   = 11
	FormatFloatLE = 14
	FormatFloatBE = 15
)

// FormatName returns a human-readable name for a PCM format.
func FormatName(format int) string {
	switch format {
	case FormatS8:
		return "S8"
	case FormatU8:
		return "U8"
	case FormatS16LE:
		return "S16_LE"
	case FormatS16BE:
		return "S16_BE"
	case FormatS24LE:
		return "S24_LE"
	case FormatS24BE:
		return "S24_BE"
	case FormatS32LE:
		return "S32_LE"
	case FormatS32BE:
		return "S32_BE"
	case FormatFloatLE:
		return "FLOAT_LE"
	case FormatFloatBE:
		return "FLOAT_BE"
	default:
		return "UNKNOWN"
	}
}

// sampleBytes returns the storage size of one sample, or 0 if unknown.
func sampleBytes(format int) int {
	switch format {
	case FormatS8, FormatU8:
		return 1
	case FormatS16LE, FormatS16BE:
		return 2
	case FormatS24LE, FormatS24BE, FormatS32LE, FormatS32BE, FormatFloatLE, FormatFloatBE:
		return 4
	}
	return 0
}

// CommonSampleRates are the rates reported when a device advertises a range.
var CommonSampleRates = []int{
	8000, 11025, 16000, 22050, 32000, 44100, 48000, 96000,
}

// CommonFormats are the formats probed during enumeration.
var CommonFormats = []int{
	FormatU8, FormatS16LE, FormatS16BE, FormatS24LE, FormatS32LE, FormatFloatLE,
}

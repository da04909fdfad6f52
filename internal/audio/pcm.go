package audio

import "github.com/smazurov/loopthru/pkg/linuxav/alsa"

// PCM is one direction of an interleaved ALSA stream.
type PCM interface {
	ReadFrames(buf []byte) (int, error)
	WriteFrames(buf []byte) (int, error)
	Prepare() error
	Drop() error
	Close() error
	FrameBytes() int
	PeriodFrames() int
	BufferFrames() int
}

// PCMOpener opens device for stream with params.
type PCMOpener func(device string, stream alsa.Stream, params alsa.Params) (PCM, error)

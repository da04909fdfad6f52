//go:build linux

package audio

import "github.com/smazurov/loopthru/pkg/linuxav/alsa"

func openALSA(device string, stream alsa.Stream, params alsa.Params) (PCM, error) {
	p, err := alsa.OpenPCM(device, stream, params)
	if err != nil {
		return nil, err
	}
	return p, nil
}

//go:build !linux

package audio

import (
	"errors"

	"github.com/smazurov/loopthru/pkg/linuxav/alsa"
)

func openALSA(string, alsa.Stream, alsa.Params) (PCM, error) {
	return nil, errors.New("ALSA PCM requires linux")
}

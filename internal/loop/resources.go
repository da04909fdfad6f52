package loop

import (
	"errors"
	"fmt"
	"log/slog"
)

// resources holds the devices the engine acquired. A nil slot was never
// acquired and is skipped on release.
type resources struct {
	capture Capture
	display Display
}

// release closes the display, then the capture device, emptying each slot.
func (r *resources) release(logger *slog.Logger) error {
	var errs []error
	if r.display != nil {
		logger.Debug("Releasing display device")
		if err := r.display.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close display: %w", err))
		}
		r.display = nil
	}
	if r.capture != nil {
		logger.Debug("Releasing capture device")
		if err := r.capture.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close capture: %w", err))
		}
		r.capture = nil
	}
	return errors.Join(errs...)
}

//go:build linux

package lifecycle

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const rtPriorityMax = 99

// schedAttr maps a class onto sched_setattr parameters.
func schedAttr(c SchedClass) (*unix.SchedAttr, error) {
	switch c {
	case SchedDefault:
		return &unix.SchedAttr{Policy: unix.SCHED_NORMAL}, nil
	case SchedRealTimeHighest:
		return &unix.SchedAttr{Policy: unix.SCHED_FIFO, Priority: rtPriorityMax}, nil
	}
	return nil, fmt.Errorf("unknown scheduling class %d", int(c))
}

// applySchedClass sets the policy of the calling OS thread.
// The goroutine must be locked to its thread.
func applySchedClass(c SchedClass) error {
	attr, err := schedAttr(c)
	if err != nil {
		return err
	}
	if err := unix.SchedSetAttr(0, attr, 0); err != nil {
		return fmt.Errorf("sched_setattr %s: %w", c, err)
	}
	return nil
}

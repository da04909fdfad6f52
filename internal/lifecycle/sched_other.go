//go:build !linux

package lifecycle

import "fmt"

func applySchedClass(c SchedClass) error {
	if c == SchedDefault {
		return nil
	}
	return fmt.Errorf("scheduling class %s is only supported on linux", c)
}

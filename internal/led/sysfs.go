package led

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfsPatterns are the friendly names Set translates to kernel triggers.
var sysfsPatterns = map[string]string{
	"solid":     "none",
	"off":       "none",
	"blink":     "heartbeat",
	"heartbeat": "heartbeat",
}

// sysfs drives LEDs under /sys/class/leds. Each LED directory takes a
// trigger name and a 0/1 brightness.
type sysfs struct {
	root  string
	names map[string]string // LED name -> directory under root
}

func newSysfs(names map[string]string) *sysfs {
	return &sysfs{root: sysfsLEDPath, names: names}
}

// Set writes the trigger for pattern, then the brightness unless a
// running trigger owns it. Unknown patterns are used as raw trigger names.
func (s *sysfs) Set(led string, enabled bool, pattern string) error {
	dir, ok := s.names[led]
	if !ok {
		return fmt.Errorf("LED %q not supported on this board", led)
	}
	dir = filepath.Join(s.root, dir)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("LED %q not found at %s", led, dir)
	}

	trig := ""
	if pattern != "" {
		trig = pattern
		if t, ok := sysfsPatterns[pattern]; ok {
			trig = t
		}
		if err := writeAttr(dir, "trigger", trig); err != nil {
			return err
		}
	}
	if enabled && trig == "heartbeat" {
		return nil
	}

	brightness := "0"
	if enabled {
		brightness = "1"
	}
	return writeAttr(dir, "brightness", brightness)
}

func writeAttr(dir, attr, value string) error {
	if err := os.WriteFile(filepath.Join(dir, attr), []byte(value), 0o644); err != nil {
		return fmt.Errorf("set LED %s: %w", attr, err)
	}
	return nil
}

func (s *sysfs) Available() []string {
	return slices.Sorted(maps.Keys(s.names))
}

func (s *sysfs) Patterns() []string {
	return []string{"solid", "blink", "heartbeat"}
}

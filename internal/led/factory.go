package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// boardLEDs maps a device tree model fragment to the board's LEDs and
// the one the loop state is shown on.
var boardLEDs = []struct {
	model string
	leds  map[string]string
	main  string
}{
	{"NanoPC-T6", map[string]string{"system": "sys_led", "user": "usr_led"}, "system"},
	{"Orange Pi", map[string]string{"blue": "blue_led", "green": "green_led"}, "green"},
	{"Raspberry Pi", map[string]string{"act": "ACT"}, "act"},
	{"BeagleBone", map[string]string{"usr0": "beaglebone:green:usr0", "usr1": "beaglebone:green:usr1"}, "usr0"},
}

// New creates a new LED controller based on board detection and returns
// it with the name of the LED that should show the loop state.
// Falls back to no-op controller if LEDs are not available.
func New(logger *slog.Logger) (Controller, string) {
	return forModel(detectBoard(), logger)
}

func forModel(model string, logger *slog.Logger) (Controller, string) {
	logger.Info("Detecting board for LED control", "board_model", model)
	for _, b := range boardLEDs {
		if strings.Contains(model, b.model) {
			logger.Info("Using sysfs LED controller", "board", b.model, "led", b.main)
			return newSysfs(b.leds), b.main
		}
	}
	logger.Info("No LED support detected, using no-op controller", "board_model", model)
	return newNoop(logger), "system"
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}

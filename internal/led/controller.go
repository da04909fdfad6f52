package led

// Controller drives board LEDs by name. The manager uses the patterns
// "solid", "blink" and "off"; sysfs boards also accept "heartbeat" and raw
// kernel trigger names.
type Controller interface {
	// Set switches led on or off. A non-empty pattern is applied first.
	Set(led string, enabled bool, pattern string) error

	// Available returns the LED names the controller can drive.
	Available() []string

	// Patterns returns the patterns Set accepts.
	Patterns() []string
}

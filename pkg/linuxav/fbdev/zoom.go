package fbdev

import (
	"fmt"
	"strings"
)

// Zoom is the hardware scaling factor applied to an OSD window.
type Zoom uint32

// Zoom factors, encoded the way the DaVinci OSD driver expects them.
const (
	Zoom1x Zoom = 0
	Zoom2x Zoom = 1
	Zoom4x Zoom = 2
)

// ParseZoom accepts "1x", "2x" or "4x" (case insensitive).
func ParseZoom(s string) (Zoom, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1x":
		return Zoom1x, nil
	case "2x":
		return Zoom2x, nil
	case "4x":
		return Zoom4x, nil
	}
	return Zoom1x, fmt.Errorf("invalid zoom %q: want 1x, 2x or 4x", s)
}

func (z Zoom) String() string {
	switch z {
	case Zoom1x:
		return "1x"
	case Zoom2x:
		return "2x"
	case Zoom4x:
		return "4x"
	}
	return fmt.Sprintf("Zoom(%d)", uint32(z))
}

//go:build !linux

package devices

func list() (Inventory, error) {
	return Inventory{Capture: []Capture{}, Display: []Display{}, Audio: []Audio{}}, ErrUnsupported
}

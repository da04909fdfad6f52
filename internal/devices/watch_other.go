//go:build !linux

package devices

import "context"

// Run returns ErrUnsupported; uevents are linux only.
func (w *Watcher) Run(_ context.Context) error {
	return ErrUnsupported
}

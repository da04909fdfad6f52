//go:build linux

package devices

import (
	"context"
	"errors"
	"fmt"

	"github.com/smazurov/loopthru/pkg/linuxav/hotplug"
)

// Run listens for kernel uevents until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	mon, err := hotplug.NewMonitor(hotplug.SubsystemVideo4Linux, hotplug.SubsystemGraphics, hotplug.SubsystemSound)
	if err != nil {
		return fmt.Errorf("hotplug monitor: %w", err)
	}
	defer mon.Close()

	uevents := make(chan hotplug.Event, 16)
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx, uevents) }()

	w.logger.Info("Watching devices for hotplug", "devices", len(w.roles))
	for ev := range uevents {
		w.handle(ev.Action, ev.Subsystem, ev.Node())
	}

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

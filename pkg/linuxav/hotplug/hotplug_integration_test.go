//go:build linux && integration

package hotplug

import (
	"context"
	"testing"
	"time"
)

// TestMonitorIntegration needs a real device event: run with
// go test -tags=integration -run TestMonitorIntegration and replug a
// camera or USB sound card within the timeout.
func TestMonitorIntegration(t *testing.T) {
	m, err := NewMonitor(SubsystemVideo4Linux, SubsystemSound)
	if err != nil {
		t.Fatalf("NewMonitor() error: %v", err)
	}
	defer func() { _ = m.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events := make(chan Event, 10)
	go func() { _ = m.Run(ctx, events) }()

	select {
	case ev := <-events:
		t.Logf("%s %s %s (%s)", ev.Action, ev.Subsystem, ev.Node(), ev.KObj)
	case <-ctx.Done():
		t.Log("no events received")
	}
}

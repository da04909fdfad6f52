package systemd

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestNotifierMessages(t *testing.T) {
	var got []string
	notify = func(_ bool, state string) (bool, error) {
		got = append(got, state)
		return true, nil
	}
	t.Cleanup(func() { notify = origNotify })

	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.Ready("video and audio running")
	n.Status("video failed")
	n.Stopping("interrupt")

	want := []string{
		"READY=1\nSTATUS=video and audio running",
		"STATUS=video failed",
		"STOPPING=1\nSTATUS=interrupt",
	}
	if len(got) != len(want) {
		t.Fatalf("sent %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNotifierErrorLogged(t *testing.T) {
	notify = func(bool, string) (bool, error) { return false, errors.New("socket gone") }
	t.Cleanup(func() { notify = origNotify })

	// Must not panic or block
	NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil))).Ready("ok")
}

func TestNotifierWithoutSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil))).Status("no socket")
}

var origNotify = notify

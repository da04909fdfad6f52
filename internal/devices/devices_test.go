package devices

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/pkg/linuxav/alsa"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.DeviceChangedEvent
}

func (b *recordingBus) Publish(ev events.Event) {
	if e, ok := ev.(events.DeviceChangedEvent); ok {
		b.mu.Lock()
		b.events = append(b.events, e)
		b.mu.Unlock()
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcherHandle(t *testing.T) {
	roles := map[string]string{
		"/dev/video0":       "capture",
		"/dev/fb1":          "display",
		"/dev/snd/pcmC0D0c": "audio capture",
	}

	tests := []struct {
		name      string
		action    string
		subsystem string
		node      string
		want      bool
		wantRole  string
	}{
		{"capture removed", "remove", "video4linux", "/dev/video0", true, "capture"},
		{"display added", "add", "graphics", "/dev/fb1", true, "display"},
		{"pcm removed", "remove", "sound", "/dev/snd/pcmC0D0c", true, "audio capture"},
		{"other node", "remove", "video4linux", "/dev/video2", false, ""},
		{"capture changed", "change", "video4linux", "/dev/video0", true, "capture"},
		{"bind ignored", "bind", "video4linux", "/dev/video0", false, ""},
		{"no node", "remove", "usb", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &recordingBus{}
			w := NewWatcher(roles, bus, testLogger())

			if got := w.handle(tt.action, tt.subsystem, tt.node); got != tt.want {
				t.Fatalf("handle() = %v, want %v", got, tt.want)
			}
			if !tt.want {
				if len(bus.events) != 0 {
					t.Errorf("published %d events", len(bus.events))
				}
				return
			}
			if len(bus.events) != 1 {
				t.Fatalf("published %d events, want 1", len(bus.events))
			}
			e := bus.events[0]
			if e.Role != tt.wantRole || e.Action != tt.action || e.Path != tt.node {
				t.Errorf("event = %+v", e)
			}
		})
	}
}

func TestWatcherFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "usb-Camera-video-index0")
	if err := os.Symlink("/dev/null", link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	w := NewWatcher(map[string]string{link: "capture"}, nil, testLogger())
	if !w.handle("remove", "mem", "/dev/null") {
		t.Error("uevent for the link target was not matched")
	}
}

func TestAudioNode(t *testing.T) {
	tests := []struct {
		device  string
		stream  alsa.Stream
		want    string
		wantErr bool
	}{
		{"hw:0,0", alsa.StreamCapture, "/dev/snd/pcmC0D0c", false},
		{"hw:1,2", alsa.StreamPlayback, "/dev/snd/pcmC1D2p", false},
		{"hw:3", alsa.StreamPlayback, "/dev/snd/pcmC3D0p", false},
		{"default", alsa.StreamCapture, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			got, err := AudioNode(tt.device, tt.stream)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AudioNode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveDevicePath(t *testing.T) {
	if got, err := ResolveDevicePath("/dev/video0"); err != nil || got != "/dev/video0" {
		t.Errorf("ResolveDevicePath(/dev/video0) = %q, %v", got, err)
	}
	if _, err := ResolveDevicePath("usb-NoSuchCamera-video-index0"); err == nil {
		t.Error("expected an error for a missing by-id link")
	}
	if _, err := ResolveDevicePath("video0"); err == nil {
		t.Error("expected an error for a bare name")
	}
}

func TestListNeverNil(t *testing.T) {
	inv, _ := List()
	if inv.Capture == nil || inv.Display == nil || inv.Audio == nil {
		t.Errorf("List() returned nil slices: %+v", inv)
	}
}

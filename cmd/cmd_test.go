package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smazurov/loopthru/internal/devices"
	"github.com/smazurov/loopthru/internal/version"
)

func TestPrintInventory(t *testing.T) {
	inv := devices.Inventory{
		Capture: []devices.Capture{
			{Path: "/dev/video0", Name: "USB Video", Driver: "uvcvideo", Streaming: true,
				Formats: []devices.CaptureFormat{{FourCC: "UYVY"}, {FourCC: "MJPG"}}},
			{Path: "/dev/video2", Name: "Metadata", Driver: "uvcvideo"},
		},
		Display: []devices.Display{{Path: "/dev/fb1", Name: "fb_ili9341", VirtualSize: "640,960", BitsPerPixel: 16}},
		Audio: []devices.Audio{
			{Device: "hw:0,0", Card: "USB Audio", Name: "PCM", Direction: "capture", MinChannels: 1, MaxChannels: 2, Rates: []int{44100, 48000}},
			{Device: "hw:1,0", Direction: "playback", MinChannels: 2, MaxChannels: 2},
		},
	}

	var buf bytes.Buffer
	if err := printInventory(&buf, inv); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"/dev/video0", "uvcvideo", "UYVY,MJPG", "/dev/video2", "/dev/fb1", "640,960", "hw:0,0", "USB Audio PCM", "1-2", "44100,48000", "hw:1,0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJoinRates(t *testing.T) {
	tests := []struct {
		rates []int
		want  string
	}{
		{nil, "-"},
		{[]int{48000}, "48000"},
		{[]int{8000, 16000}, "8000,16000"},
	}
	for _, tt := range tests {
		if got := joinRates(tt.rates); got != tt.want {
			t.Errorf("joinRates(%v) = %q, want %q", tt.rates, got, tt.want)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := CreateVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "loopthru "+version.Get().Version) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

package api

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/loopthru/internal/audio"
	"github.com/smazurov/loopthru/internal/devices"
	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/led"
	"github.com/smazurov/loopthru/internal/loop"
	"github.com/smazurov/loopthru/internal/systemd"
)

type fakeVideo struct{ stats loop.Stats }

func (f fakeVideo) Stats() loop.Stats { return f.stats }

type fakeAudio struct{ stats audio.Stats }

func (f fakeAudio) Stats() audio.Stats { return f.stats }

type fakeUnits struct {
	status systemd.UnitStatus
	err    error
}

func (f fakeUnits) GetServiceStatus(context.Context, string) (systemd.UnitStatus, error) {
	return f.status, f.err
}

type fakeLEDs struct{ sets []string }

func (f *fakeLEDs) Set(ledType string, _ bool, pattern string) error {
	if ledType != "system" {
		return errors.New("unsupported")
	}
	f.sets = append(f.sets, pattern)
	return nil
}
func (f *fakeLEDs) Available() []string           { return []string{"system"} }
func (f *fakeLEDs) Patterns() []string            { return []string{"solid", "blink"} }
func (f *fakeLEDs) LED() string                   { return "system" }
func (f *fakeLEDs) Pattern() string               { return "solid" }
func (f *fakeLEDs) GetController() led.Controller { return f }

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	if opts.Video == nil {
		opts.Video = fakeVideo{loop.Stats{State: events.LoopRunning, Frames: 42, Displayed: 1, Working: 0, FrameSize: 614400}}
	}
	if opts.ListDevices == nil {
		opts.ListDevices = func() (devices.Inventory, error) {
			return devices.Inventory{
				Capture: []devices.Capture{{Path: "/dev/video0", Name: "cam", Streaming: true}},
				Display: []devices.Display{},
				Audio:   []devices.Audio{},
			}, nil
		}
	}
	ts := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url, user, pass string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	for _, path := range []string{"/api/health", "/api/version"} {
		if resp := get(t, ts.URL+path, "", ""); resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200 without auth", path, resp.StatusCode)
		}
	}

	var v struct {
		Version  string `json:"version"`
		Platform string `json:"platform"`
	}
	decode(t, get(t, ts.URL+"/api/version", "", ""), &v)
	if v.Version == "" || v.Platform == "" {
		t.Errorf("version body = %+v", v)
	}
}

func TestOpenAPISchemas(t *testing.T) {
	ts := newTestServer(t, &Options{
		EventBus:       events.New(),
		Audio:          fakeAudio{},
		LEDs:           &fakeLEDs{},
		SystemdManager: fakeUnits{},
	})

	var doc struct {
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	decode(t, get(t, ts.URL+"/openapi.json", "", ""), &doc)
	for _, name := range []string{"StatusData", "VideoStatus", "AudioStatus"} {
		if _, ok := doc.Components.Schemas[name]; !ok {
			t.Errorf("schema %s missing from OpenAPI document", name)
		}
	}
}

func TestBasicAuth(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	tests := []struct {
		name string
		url  string
		user string
		pass string
		want int
	}{
		{"no credentials", "/api/status", "", "", http.StatusUnauthorized},
		{"wrong password", "/api/status", "admin", "nope", http.StatusUnauthorized},
		{"valid", "/api/status", "admin", "secret", http.StatusOK},
		{"query param", "/api/status?auth=" + base64.StdEncoding.EncodeToString([]byte("admin:secret")), "", "", http.StatusOK},
		{"bad query param", "/api/status?auth=!!!!", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+tt.url, tt.user, tt.pass)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		audio     AudioSource
		wantAudio bool
	}{
		{"video only", nil, false},
		{"both loops", fakeAudio{audio.Stats{State: events.LoopRunning, Periods: 7, PlaybackXruns: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &Options{Audio: tt.audio})

			var body struct {
				Video loop.Stats   `json:"video"`
				Audio *audio.Stats `json:"audio"`
			}
			decode(t, get(t, ts.URL+"/api/status", "", ""), &body)

			if body.Video.Frames != 42 || body.Video.State != events.LoopRunning || body.Video.Displayed != 1 {
				t.Errorf("video = %+v", body.Video)
			}
			if (body.Audio != nil) != tt.wantAudio {
				t.Fatalf("audio present = %v, want %v", body.Audio != nil, tt.wantAudio)
			}
			if tt.wantAudio && (body.Audio.Periods != 7 || body.Audio.PlaybackXruns != 1) {
				t.Errorf("audio = %+v", body.Audio)
			}
		})
	}
}

func TestDevices(t *testing.T) {
	ts := newTestServer(t, &Options{})

	var inv devices.Inventory
	decode(t, get(t, ts.URL+"/api/devices", "", ""), &inv)
	if len(inv.Capture) != 1 || inv.Capture[0].Path != "/dev/video0" {
		t.Errorf("inventory = %+v", inv)
	}
}

func TestDevicesPartialFailure(t *testing.T) {
	ts := newTestServer(t, &Options{ListDevices: func() (devices.Inventory, error) {
		return devices.Inventory{Capture: []devices.Capture{}, Display: []devices.Display{{Path: "/dev/fb0"}}, Audio: []devices.Audio{}},
			errors.New("audio devices: permission denied")
	}})

	resp := get(t, ts.URL+"/api/devices", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var inv devices.Inventory
	decode(t, resp, &inv)
	if len(inv.Display) != 1 {
		t.Errorf("inventory = %+v", inv)
	}
}

func TestSystemdStatus(t *testing.T) {
	ts := newTestServer(t, &Options{SystemdManager: fakeUnits{status: systemd.UnitStatus{ActiveState: "active", SubState: "running"}}})

	var body struct {
		Service  string `json:"service"`
		Status   string `json:"status"`
		SubState string `json:"sub_state"`
	}
	decode(t, get(t, ts.URL+"/api/systemd/status", "", ""), &body)
	if body.Service != "loopthru.service" || body.Status != "active" || body.SubState != "running" {
		t.Errorf("body = %+v", body)
	}

	failing := newTestServer(t, &Options{SystemdManager: fakeUnits{err: errors.New("no bus")}})
	if resp := get(t, failing.URL+"/api/systemd/status", "", ""); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}

	none := newTestServer(t, &Options{})
	if resp := get(t, none.URL+"/api/systemd/status", "", ""); resp.StatusCode == http.StatusOK {
		t.Error("route registered without a manager")
	}
}

func put(t *testing.T, url, body string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLEDRoutes(t *testing.T) {
	leds := &fakeLEDs{}
	ts := newTestServer(t, &Options{LEDs: leds})

	var state LEDState
	decode(t, get(t, ts.URL+"/api/leds", "", ""), &state)
	if state.LED != "system" || state.Pattern != "solid" || len(state.Patterns) != 2 {
		t.Errorf("state = %+v", state)
	}

	if code := put(t, ts.URL+"/api/leds/system", `{"enabled":true,"pattern":"blink"}`); code >= 300 {
		t.Errorf("PUT status = %d", code)
	}
	if len(leds.sets) != 1 || leds.sets[0] != "blink" {
		t.Errorf("sets = %v", leds.sets)
	}
	if code := put(t, ts.URL+"/api/leds/user", `{"enabled":true}`); code != http.StatusBadRequest {
		t.Errorf("unsupported LED status = %d, want 400", code)
	}
}

func TestMetricsHandler(t *testing.T) {
	ts := newTestServer(t, &Options{
		AuthUsername: "admin",
		AuthPassword: "secret",
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("loopthru_video_frames_total 1\n"))
		}),
	})
	resp := get(t, ts.URL+"/metrics", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /metrics = %d, want 200 without auth", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &Options{})
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/status", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

// readData collects SSE data lines from resp until n lines or timeout.
func readData(t *testing.T, resp *http.Response, n int) []string {
	t.Helper()
	lines := make(chan string, n)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if data, ok := strings.CutPrefix(scanner.Text(), "data:"); ok {
				lines <- strings.TrimSpace(data)
			}
		}
		close(lines)
	}()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case line, ok := <-lines:
			if !ok {
				return got
			}
			got = append(got, line)
		case <-timeout:
			t.Fatalf("received %d of %d SSE messages: %q", len(got), n, got)
		}
	}
	return got
}

func TestEventsStream(t *testing.T) {
	bus := events.New()
	ts := newTestServer(t, &Options{EventBus: bus})

	resp := get(t, ts.URL+"/api/events", "", "")
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}

	// Initial state first, then published events
	go func() {
		time.Sleep(100 * time.Millisecond)
		bus.Publish(events.ScriptFinishedEvent{Name: "show", ExitCode: 0})
	}()

	got := readData(t, resp, 2)
	if !strings.Contains(got[0], `"loop":"video"`) || !strings.Contains(got[0], `"state":"running"`) {
		t.Errorf("initial message = %s", got[0])
	}
	if !strings.Contains(got[1], `"name":"show"`) {
		t.Errorf("second message = %s", got[1])
	}
}

func TestStatusStream(t *testing.T) {
	ts := newTestServer(t, &Options{})

	resp := get(t, ts.URL+"/api/status/stream?interval_ms=100", "", "")
	for _, line := range readData(t, resp, 2) {
		if !strings.Contains(line, `"frames":42`) {
			t.Errorf("snapshot = %s", line)
		}
	}
}

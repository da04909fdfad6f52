package process

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/loopthru/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRunner creates a Runner with short stop timeouts.
func newTestRunner(opts ...Option) *Runner {
	r := NewRunner(testLogger(), opts...)
	r.gracefulTimeout = 100 * time.Millisecond
	r.killTimeout = 100 * time.Millisecond
	return r
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.ScriptFinishedEvent
}

func (b *recordingBus) Publish(ev events.Event) {
	if e, ok := ev.(events.ScriptFinishedEvent); ok {
		b.mu.Lock()
		b.events = append(b.events, e)
		b.mu.Unlock()
	}
}

type testOutputHandler struct {
	mu    sync.Mutex
	lines map[string][]string
}

func (h *testOutputHandler) HandleLine(source, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lines == nil {
		h.lines = make(map[string][]string)
	}
	h.lines[source] = append(h.lines[source], line)
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    int
		wantErr bool
	}{
		{"success", "true", 0, false},
		{"failure", "false", 1, true},
		{"explicit status", "exit 3", 3, true},
		{"pipeline", "echo ok | grep -q ok", 0, false},
		{"missing binary", "/nonexistent/binary-loopthru", 127, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := newTestRunner().Run(context.Background(), Script{Name: "show", Command: tt.command})
			if code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunEmptyCommandSkipped(t *testing.T) {
	bus := &recordingBus{}
	for _, command := range []string{"", "   ", "\n"} {
		code, err := newTestRunner(WithEventBus(bus)).Run(context.Background(), Script{Name: "reset", Command: command})
		if code != 0 || err != nil {
			t.Errorf("Run(%q) = %d, %v; want 0, nil", command, code, err)
		}
	}
	if len(bus.events) != 0 {
		t.Errorf("published %d events for skipped scripts", len(bus.events))
	}
}

func TestRunTimeoutInterrupts(t *testing.T) {
	r := newTestRunner(WithTimeout(100 * time.Millisecond))
	r.gracefulTimeout = time.Second

	start := time.Now()
	code, err := r.Run(context.Background(), Script{Name: "show", Command: "trap 'exit 0' INT; while :; do sleep 0.05; done"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0 from the trap", code)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("took %v, want the interrupt to end the script", elapsed)
	}
}

func TestRunTimeoutForceKills(t *testing.T) {
	r := newTestRunner(WithTimeout(50 * time.Millisecond))

	code, err := r.Run(context.Background(), Script{Name: "show", Command: "trap '' INT; sleep 10"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if code != 137 {
		t.Errorf("exit code = %d, want 137", code)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := newTestRunner().Run(ctx, Script{Name: "show", Command: "sleep 10"})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("error = %v, want ErrTimeout", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for script to stop")
	}
}

func TestRunOutputHandler(t *testing.T) {
	h := &testOutputHandler{}
	code, err := newTestRunner(WithOutputHandler(h)).Run(context.Background(),
		Script{Name: "show", Command: "echo line1; echo line2; echo oops >&2"})
	if code != 0 || err != nil {
		t.Fatalf("Run() = %d, %v", code, err)
	}
	if got := h.lines["stdout"]; !slices.Equal(got, []string{"line1", "line2"}) {
		t.Errorf("stdout lines = %v", got)
	}
	if got := h.lines["stderr"]; !slices.Equal(got, []string{"oops"}) {
		t.Errorf("stderr lines = %v", got)
	}
}

func TestRunWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	code, err := newTestRunner().Run(context.Background(), Script{Name: "show", Command: "touch marker", Dir: dir})
	if code != 0 || err != nil {
		t.Fatalf("Run() = %d, %v", code, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "marker")); err != nil {
		t.Errorf("script did not run in %s: %v", dir, err)
	}
}

func TestRunCustomShell(t *testing.T) {
	h := &testOutputHandler{}
	r := newTestRunner(WithShell(`sh -e -c`), WithOutputHandler(h))
	code, _ := r.Run(context.Background(), Script{Name: "reset", Command: "false; echo unreachable"})
	if code != 1 {
		t.Errorf("exit code = %d, want 1 with -e", code)
	}
	if len(h.lines["stdout"]) != 0 {
		t.Errorf("unexpected output %v", h.lines["stdout"])
	}

	if _, err := newTestRunner(WithShell(`sh "-c`)).Run(context.Background(), Script{Name: "reset", Command: "true"}); err == nil {
		t.Error("expected an error for an unparsable shell")
	}
}

func TestRunPublishesFinished(t *testing.T) {
	bus := &recordingBus{}
	r := newTestRunner(WithEventBus(bus))
	_, _ = r.Run(context.Background(), Script{Name: "show", Command: "true"})
	_, _ = r.Run(context.Background(), Script{Name: "reset", Command: "exit 2"})

	if len(bus.events) != 2 {
		t.Fatalf("published %d events, want 2", len(bus.events))
	}
	if e := bus.events[0]; e.Name != "show" || e.ExitCode != 0 {
		t.Errorf("first event = %+v", e)
	}
	if e := bus.events[1]; e.Name != "reset" || e.ExitCode != 2 {
		t.Errorf("second event = %+v", e)
	}
	if _, err := time.Parse(time.RFC3339, bus.events[0].Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", bus.events[0].Timestamp, err)
	}
}

func TestExitCodeFromError(t *testing.T) {
	if got := exitCodeFromError(nil); got != 0 {
		t.Errorf("nil error: got %d", got)
	}
	if got := exitCodeFromError(errors.New("boom")); got != 1 {
		t.Errorf("plain error: got %d", got)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"sh -c", []string{"sh", "-c"}, false},
		{"  bash   -c  ", []string{"bash", "-c"}, false},
		{`echo hello\ world`, []string{"echo", "hello world"}, false},
		{`sh -c "echo 'nested'"`, []string{"sh", "-c", "echo 'nested'"}, false},
		{`busybox 'sh' -c`, []string{"busybox", "sh", "-c"}, false},
		{`sh "-c`, nil, true},
		{"", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseCommand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseCommand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStreamOutputLogLevels(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewRunner(logger)

	r.streamOutput(strings.NewReader("first\nsecond\n"), "stderr", "show")
	r.streamOutput(strings.NewReader("third\n"), "stdout", "show")

	out := sb.String()
	for _, want := range []string{"level=WARN msg=first", "level=WARN msg=second", "level=INFO msg=third"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/logging"
)

// ErrTimeout is returned when a script outlived its timeout and was killed.
var ErrTimeout = errors.New("script timed out")

// exitKilled is reported for a script that had to be killed.
const exitKilled = 137

// DefaultShell runs each script as an argument to sh -c.
const DefaultShell = "sh -c"

// OutputHandler receives output lines from the script.
type OutputHandler interface {
	HandleLine(source, line string)
}

// Publisher receives script outcomes.
type Publisher interface {
	Publish(ev events.Event)
}

// Script is a named shell snippet such as the display show or reset step.
type Script struct {
	Name    string
	Command string
	Dir     string // working directory, empty for the current one
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell replaces DefaultShell. The script is appended as the last argument.
func WithShell(shell string) Option {
	return func(r *Runner) { r.shell = shell }
}

// WithTimeout bounds how long a script may run; zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithOutputHandler forwards every output line to h.
func WithOutputHandler(h OutputHandler) Option {
	return func(r *Runner) { r.outputHandler = h }
}

// WithEventBus publishes a ScriptFinishedEvent after each run.
func WithEventBus(bus Publisher) Option {
	return func(r *Runner) { r.bus = bus }
}

// Runner executes scripts one at a time and logs their output.
type Runner struct {
	shell           string
	timeout         time.Duration
	logger          logging.Logger
	outputHandler   OutputHandler
	bus             Publisher
	gracefulTimeout time.Duration // after the timeout, before SIGKILL
	killTimeout     time.Duration // after SIGKILL, before giving up on Wait
}

// NewRunner creates a script runner that logs to logger.
func NewRunner(logger logging.Logger, opts ...Option) *Runner {
	r := &Runner{
		shell:           DefaultShell,
		logger:          logger,
		gracefulTimeout: 2 * time.Second,
		killTimeout:     2 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes s and blocks until it exits, ctx is done or the timeout
// passes. It returns the exit status of the shell; a non-zero status is
// also reported as an error. An empty command is skipped and succeeds.
func (r *Runner) Run(ctx context.Context, s Script) (int, error) {
	if strings.TrimSpace(s.Command) == "" {
		r.logger.Debug("Script empty, skipping", "script", s.Name)
		return 0, nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	code, err := r.run(ctx, s)
	r.logger.Info("Script finished", "script", s.Name, "exit_code", code, "duration", time.Since(start).Round(time.Millisecond))

	if r.bus != nil {
		r.bus.Publish(events.ScriptFinishedEvent{
			Name:      s.Name,
			ExitCode:  code,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return code, err
}

func (r *Runner) run(ctx context.Context, s Script) (int, error) {
	args, err := parseCommand(r.shell)
	if err != nil {
		return 1, fmt.Errorf("shell %q: %w", r.shell, err)
	}
	if len(args) == 0 {
		return 1, errors.New("empty shell")
	}
	args = append(args, s.Command)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = s.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 1, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 1, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		r.logger.Error("Failed to start script", "script", s.Name, "error", err)
		return 1, fmt.Errorf("start %s: %w", s.Name, err)
	}
	r.logger.Debug("Script started", "script", s.Name, "pid", cmd.Process.Pid, "command", s.Command)

	outputDone := make(chan struct{}, 2)
	go func() {
		r.streamOutput(stdout, "stdout", s.Name)
		outputDone <- struct{}{}
	}()
	go func() {
		r.streamOutput(stderr, "stderr", s.Name)
		outputDone <- struct{}{}
	}()

	processDone := make(chan error, 1)
	go func() {
		// Wait closes the pipes, so output must be drained first.
		<-outputDone
		<-outputDone
		processDone <- cmd.Wait()
	}()

	select {
	case err := <-processDone:
		code := exitCodeFromError(err)
		if code != 0 {
			return code, fmt.Errorf("%s exited with status %d: %w", s.Name, code, err)
		}
		return 0, nil
	case <-ctx.Done():
		r.logger.Warn("Script did not finish in time, stopping it", "script", s.Name, "error", ctx.Err())
		code := r.stop(cmd, processDone)
		return code, fmt.Errorf("%s: %w", s.Name, ErrTimeout)
	}
}

// stop interrupts the script's process group, escalating to SIGKILL.
func (r *Runner) stop(cmd *exec.Cmd, processDone <-chan error) int {
	pgid := -cmd.Process.Pid
	if err := syscall.Kill(pgid, syscall.SIGINT); err != nil && !errors.Is(err, syscall.ESRCH) {
		r.logger.Warn("Failed to send SIGINT", "pid", cmd.Process.Pid, "error", err)
	}

	select {
	case err := <-processDone:
		return exitCodeFromError(err)
	case <-time.After(r.gracefulTimeout):
	}

	r.logger.Warn("Graceful stop timed out, forcing kill", "pid", cmd.Process.Pid, "timeout", r.gracefulTimeout)
	if err := syscall.Kill(pgid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		if !errors.Is(err, os.ErrProcessDone) {
			r.logger.Error("Failed to kill script", "error", err)
		}
	}
	select {
	case <-processDone:
	case <-time.After(r.killTimeout):
		r.logger.Error("Script did not exit after kill signal", "pid", cmd.Process.Pid)
	}
	return exitKilled
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
	}
	return 1
}

// streamOutput logs every line the script writes. Standard error lines
// are logged at warn level.
func (r *Runner) streamOutput(reader io.Reader, source, script string) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()

		if r.outputHandler != nil {
			r.outputHandler.HandleLine(source, line)
		}

		if source == "stderr" {
			r.logger.Warn(line, "script", script, "source", source)
		} else {
			r.logger.Info(line, "script", script, "source", source)
		}
	}

	if err := scanner.Err(); err != nil {
		r.logger.Warn("Error reading script output", "script", script, "source", source, "error", err)
	}
}

// parseCommand parses a command string into arguments
// Handles quoted strings and basic escaping.
func parseCommand(command string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	command = strings.TrimSpace(command)
	runes := []rune(command)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			switch {
			case !inQuote:
				inQuote = true
				quoteChar = r
			case r == quoteChar:
				inQuote = false
				quoteChar = 0
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		case r == '\\' && i+1 < len(runes):
			// Handle escape sequences
			i++ // Skip the backslash
			current.WriteRune(runes[i])
		default:
			current.WriteRune(r)
		}
	}

	// Add final argument
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	if inQuote {
		return nil, fmt.Errorf("unclosed quote in command")
	}

	return args, nil
}

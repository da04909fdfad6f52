package events

// Event type constants for kelindar/event.
const (
	TypeLoopStateChanged uint32 = iota + 1
	TypeShutdownRequested
	TypeScriptFinished
	TypeLogEntry
	TypeDeviceChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LoopState is the lifecycle state of a video or audio loop.
type LoopState string

// Loop states.
const (
	LoopStarting LoopState = "starting"
	LoopRunning  LoopState = "running"
	LoopStopped  LoopState = "stopped"
	LoopFailed   LoopState = "failed"
)

// LoopStateChangedEvent is published whenever a loop moves between states.
// Used for LED control and the status API.
type LoopStateChangedEvent struct {
	Loop      string    `json:"loop" example:"video" doc:"Loop name"`
	State     LoopState `json:"state" example:"running" doc:"New state"`
	Error     string    `json:"error,omitempty" doc:"Failure reason when state is failed"`
	Timestamp string    `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LoopStateChangedEvent.
func (e LoopStateChangedEvent) Type() uint32 { return TypeLoopStateChanged }

// ShutdownRequestedEvent is published by the interrupt handler.
type ShutdownRequestedEvent struct {
	Signal    string `json:"signal" example:"interrupt" doc:"Signal that requested the shutdown"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ShutdownRequestedEvent.
func (e ShutdownRequestedEvent) Type() uint32 { return TypeShutdownRequested }

// ScriptFinishedEvent reports the outcome of a display script.
type ScriptFinishedEvent struct {
	Name      string `json:"name" example:"show" doc:"Script name"`
	ExitCode  int    `json:"exit_code" example:"0" doc:"Exit code of the shell"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ScriptFinishedEvent.
func (e ScriptFinishedEvent) Type() uint32 { return TypeScriptFinished }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"video" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// DeviceChangedEvent reports a watched device node appearing or vanishing.
type DeviceChangedEvent struct {
	Action    string `json:"action" example:"remove" doc:"add, remove or change"`
	Role      string `json:"role" example:"capture" doc:"What the loops use the device for"`
	Path      string `json:"path" example:"/dev/video0" doc:"Device node"`
	Subsystem string `json:"subsystem" example:"video4linux" doc:"Kernel subsystem"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceChangedEvent.
func (e DeviceChangedEvent) Type() uint32 { return TypeDeviceChanged }
